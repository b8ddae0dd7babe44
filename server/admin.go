package server

import (
	"encoding/json"
	"net/http"
)

func battleIDFrom(r *http.Request) string {
	id := r.URL.Query().Get("battle")
	if id == "" {
		id = "battle-1"
	}
	return id
}

// HandleAdminStage 战斗阶段的查询与切换
// GET  /admin/stage?battle=battle-1               返回当前阶段
// POST /admin/stage?battle=battle-1&action=start  NotStarted → InBattle
// POST /admin/stage?battle=battle-1&action=end    InBattle → Ended
func HandleAdminStage(w http.ResponseWriter, r *http.Request) {
	GetBattleManager().HandleAdminStage(w, r)
}

// HandleMetrics 输出指定战斗的运行指标
// GET /metrics?battle=battle-1
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	GetBattleManager().HandleMetrics(w, r)
}

func (m *BattleManager) HandleAdminStage(w http.ResponseWriter, r *http.Request) {
	id := battleIDFrom(r)
	battle := m.GetOrCreateBattle(id)

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"battle": id, "stage": battle.Stage().String()})
	case http.MethodPost:
		var err error
		switch r.URL.Query().Get("action") {
		case "start":
			err = battle.Start()
		case "end":
			err = battle.End()
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		if err != nil {
			writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		Log.Infow("stage updated", "battle", id, "stage", battle.Stage().String())
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stage": battle.Stage().String()})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (m *BattleManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	id := battleIDFrom(r)
	battle, ok := m.GetBattle(id)
	if !ok {
		http.Error(w, "battle not found", http.StatusNotFound)
		return
	}
	battle.mu.Lock()
	tick := battle.tickSeq
	live := len(battle.projectiles)
	battle.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"battle":      id,
		"tick":        tick,
		"projectiles": live,
		"metrics":     battle.metrics.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
