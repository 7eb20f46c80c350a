package client

import (
	"encoding/json"
	"net/http"
)

// Admin 本地诊断接口：配置读取/热更新与运行指标
type Admin struct {
	store  *ConfigStore
	client *GameClient
}

func NewAdmin(store *ConfigStore, client *GameClient) *Admin {
	return &Admin{store: store, client: client}
}

// Routes 注册 HTTP 路由
func (a *Admin) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/admin/config", a.HandleAdminConfig)
	mux.HandleFunc("/metrics", a.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

// HandleAdminConfig 提供配置的读取与更新（下一帧生效）
// GET /admin/config  返回当前配置
// POST /admin/config 以 JSON 载荷更新部分字段
func (a *Admin) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type patch struct {
		Predict            *bool     `json:"predict,omitempty"`
		AntiPing           *bool     `json:"antiPing,omitempty"`
		DummyHammer        *bool     `json:"dummyHammer,omitempty"`
		DummyRestoreWeapon *bool     `json:"dummyRestoreWeapon,omitempty"`
		DummyResetOnSwitch *int      `json:"dummyResetOnSwitch,omitempty"`
		TuningTimeoutTicks *int      `json:"tuningTimeoutTicks,omitempty"`
		Player             *Identity `json:"player,omitempty"`
		Dummy              *Identity `json:"dummy,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a.store.Snapshot())
		return
	case http.MethodPost:
		var body patch
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.DummyResetOnSwitch != nil && (*body.DummyResetOnSwitch < 0 || *body.DummyResetOnSwitch > 2) {
			http.Error(w, "dummyResetOnSwitch must be 0, 1 or 2", http.StatusBadRequest)
			return
		}
		if body.TuningTimeoutTicks != nil && *body.TuningTimeoutTicks <= 0 {
			http.Error(w, "tuningTimeoutTicks must be positive", http.StatusBadRequest)
			return
		}
		cfg := a.store.Update(func(cfg *Config) {
			if body.Predict != nil {
				cfg.Predict = *body.Predict
			}
			if body.AntiPing != nil {
				cfg.AntiPing = *body.AntiPing
			}
			if body.DummyHammer != nil {
				cfg.DummyHammer = *body.DummyHammer
			}
			if body.DummyRestoreWeapon != nil {
				cfg.DummyRestoreWeapon = *body.DummyRestoreWeapon
			}
			if body.DummyResetOnSwitch != nil {
				cfg.DummyResetOnSwitch = *body.DummyResetOnSwitch
			}
			if body.TuningTimeoutTicks != nil {
				cfg.TuningTimeoutTicks = *body.TuningTimeoutTicks
			}
			if body.Player != nil {
				cfg.Player = *body.Player
			}
			if body.Dummy != nil {
				cfg.Dummy = *body.Dummy
			}
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		Log.Infof("config updated: predict=%v antiPing=%v hammer=%v resetOnSwitch=%d tuningTimeout=%d",
			cfg.Predict, cfg.AntiPing, cfg.DummyHammer, cfg.DummyResetOnSwitch, cfg.TuningTimeoutTicks)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出运行指标与最近一帧的诊断状态
// GET /metrics
func (a *Admin) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"metrics": a.client.Metrics().Snapshot(),
	}
	if d, ok := a.client.Published(); ok {
		payload["state"] = d
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
