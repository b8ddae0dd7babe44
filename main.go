package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arenasim/arena"
	"arenasim/config"
	"arenasim/server"
)

// arenasim 入口：读取配置，加载地图，启动 HTTP + WebSocket 服务与战斗管理器
func main() {
	var configDir string
	flag.StringVar(&configDir, "config", ".", "directory containing "+config.FileName)
	flag.Parse()

	cfg, err := config.Load(configDir)
	if err != nil {
		panic(err)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.Log.File, cfg.Log.Level); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	walls := arena.Bounded(cfg.Battle.Width, cfg.Battle.Height)
	if cfg.Battle.MapFile != "" {
		walls, err = arena.LoadFile(cfg.Battle.MapFile, cfg.Battle.Width, cfg.Battle.Height)
		if err != nil {
			server.Log.Fatalf("load map: %v", err)
		}
	}
	server.Log.Infow("map loaded", "file", cfg.Battle.MapFile, "walls", len(walls.Walls()))

	bm := server.InitBattleManager(server.BattleOptions{
		Walls:    walls,
		Width:    cfg.Battle.Width,
		Height:   cfg.Battle.Height,
		TickRate: cfg.Battle.TickRate,
	}, cfg.Battle.AutoStart)
	// 先预创建一个默认战斗，便于快速试跑
	_ = bm.GetOrCreateBattle(cfg.Battle.DefaultID)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.HandleFunc("/admin/stage", server.HandleAdminStage)
	mux.HandleFunc("/metrics", server.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		server.Log.Infof("arenasim listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
	bm.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
