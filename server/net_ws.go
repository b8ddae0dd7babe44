package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	mu   sync.Mutex
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send == nil {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃旧消息（防止阻塞 Tick）
	}
}

// Close 关闭底层连接与发送队列，可重复调用
func (c *ClientConn) Close() {
	c.mu.Lock()
	if c.send != nil {
		// 关闭发送通道以结束写协程
		close(c.send)
		c.send = nil
	}
	c.mu.Unlock()
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump(send <-chan []byte) {
	defer c.ws.Close()
	for msg := range send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump 读取客户端消息：移动意图进入输入队列，开火直接在战斗锁内结算
func (c *ClientConn) readPump(battle *Battle, playerID PlayerID) {
	defer c.ws.Close()
	// 读泵退出时，通知战斗在 Tick 线程中移除该玩家
	defer battle.RequestLeave(playerID)
	c.ws.SetReadLimit(1 << 20) // 1MB
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var im InputMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			continue
		}
		handleMessage(battle, playerID, im)
	}
}

// handleMessage 解释一条客户端消息
func handleMessage(battle *Battle, playerID PlayerID, im InputMessage) {
	switch strings.ToLower(im.Type) {
	case "move":
		battle.OnInput(Input{PlayerID: playerID, Command: parseDirection(im.Command), Seq: im.Seq})
	case "fire":
		kind, ok := ParseWeaponKind(strings.ToLower(im.Weapon))
		if !ok {
			Log.Debugw("unknown weapon", "player", playerID, "weapon", im.Weapon)
			return
		}
		if kind == WeaponLaser {
			if _, err := battle.FireLaser(playerID, im.AntiArmor); err != nil {
				Log.Debugw("laser rejected", "battle", battle.ID, "player", playerID, "error", err)
			}
			return
		}
		if _, err := battle.Fire(playerID, kind, im.AntiArmor); err != nil {
			Log.Debugw("fire rejected", "battle", battle.ID, "player", playerID, "error", err)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?battle=battle-1&player=alice
func HandleWS(w http.ResponseWriter, r *http.Request) {
	GetBattleManager().HandleWS(w, r)
}

func (m *BattleManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "missing player query", http.StatusBadRequest)
		return
	}
	battle := m.GetOrCreateBattle(battleIDFrom(r))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "error", err)
		return
	}

	client := NewClientConn(ws)
	if _, err := battle.JoinPlayer(PlayerID(playerID), client); err != nil {
		Log.Infow("join rejected", "battle", battle.ID, "player", playerID, "error", err)
		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		client.Close()
		return
	}

	go client.writePump(client.send)
	go client.readPump(battle, PlayerID(playerID))
}
