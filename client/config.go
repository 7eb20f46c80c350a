package client

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config 每帧传入核心操作的配置快照（值类型，复制后只读）
type Config struct {
	Predict  bool `json:"predict"`
	AntiPing bool `json:"antiPing"`

	DummyHammer        bool `json:"dummyHammer"`
	DummyRestoreWeapon bool `json:"dummyRestoreWeapon"`
	DummyResetOnSwitch int  `json:"dummyResetOnSwitch"` // 0 不重置，1 重置失去控制的槽位，2 重置获得控制的槽位

	Player Identity `json:"player"`
	Dummy  Identity `json:"dummy"`

	TuningTimeoutTicks    int     `json:"tuningTimeoutTicks"`
	PredictionMarginTicks int     `json:"predictionMarginTicks"`
	MultiViewSmoothing    float64 `json:"multiViewSmoothing"`
	MaxMultiViewZoom      float64 `json:"maxMultiViewZoom"`
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Predict:               true,
		AntiPing:              false,
		DummyResetOnSwitch:    0,
		Player:                Identity{Name: "nameless tee", Country: -1, Skin: "default"},
		Dummy:                 Identity{Name: "brainless tee", Country: -1, Skin: "default"},
		TuningTimeoutTicks:    TickSpeed * 2,
		PredictionMarginTicks: 2,
		MultiViewSmoothing:    0.3,
		MaxMultiViewZoom:      3,
	}
}

// LoadConfig 从 .env 文件与环境变量加载配置，未设置的键保留默认值
// files 为空时尝试加载当前目录的 .env（不存在不报错）
func LoadConfig(files ...string) (Config, error) {
	cfg := DefaultConfig()
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return cfg, errors.Wrap(err, "load env files")
		}
	}

	var err error
	boolVar := func(key string, dst *bool) {
		if err != nil {
			return
		}
		if v, ok := os.LookupEnv(key); ok {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = errors.Wrapf(perr, "parse %s", key)
				return
			}
			*dst = b
		}
	}
	intVar := func(key string, dst *int) {
		if err != nil {
			return
		}
		if v, ok := os.LookupEnv(key); ok {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = errors.Wrapf(perr, "parse %s", key)
				return
			}
			*dst = n
		}
	}
	floatVar := func(key string, dst *float64) {
		if err != nil {
			return
		}
		if v, ok := os.LookupEnv(key); ok {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = errors.Wrapf(perr, "parse %s", key)
				return
			}
			*dst = f
		}
	}
	strVar := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	boolVar("CL_PREDICT", &cfg.Predict)
	boolVar("CL_ANTIPING", &cfg.AntiPing)
	boolVar("CL_DUMMY_HAMMER", &cfg.DummyHammer)
	boolVar("CL_DUMMY_RESTORE_WEAPON", &cfg.DummyRestoreWeapon)
	intVar("CL_DUMMY_RESET_ON_SWITCH", &cfg.DummyResetOnSwitch)
	intVar("CL_TUNING_TIMEOUT_TICKS", &cfg.TuningTimeoutTicks)
	intVar("CL_PREDICTION_MARGIN", &cfg.PredictionMarginTicks)
	floatVar("CL_MULTIVIEW_SMOOTHING", &cfg.MultiViewSmoothing)
	floatVar("CL_MULTIVIEW_MAX_ZOOM", &cfg.MaxMultiViewZoom)

	strVar("PLAYER_NAME", &cfg.Player.Name)
	strVar("PLAYER_CLAN", &cfg.Player.Clan)
	intVar("PLAYER_COUNTRY", &cfg.Player.Country)
	strVar("PLAYER_SKIN", &cfg.Player.Skin)
	boolVar("PLAYER_USE_CUSTOM_COLOR", &cfg.Player.UseCustomColor)
	intVar("PLAYER_COLOR_BODY", &cfg.Player.ColorBody)
	intVar("PLAYER_COLOR_FEET", &cfg.Player.ColorFeet)

	strVar("DUMMY_NAME", &cfg.Dummy.Name)
	strVar("DUMMY_CLAN", &cfg.Dummy.Clan)
	intVar("DUMMY_COUNTRY", &cfg.Dummy.Country)
	strVar("DUMMY_SKIN", &cfg.Dummy.Skin)
	boolVar("DUMMY_USE_CUSTOM_COLOR", &cfg.Dummy.UseCustomColor)
	intVar("DUMMY_COLOR_BODY", &cfg.Dummy.ColorBody)
	intVar("DUMMY_COLOR_FEET", &cfg.Dummy.ColorFeet)

	if err != nil {
		return DefaultConfig(), err
	}
	if cfg.DummyResetOnSwitch < 0 || cfg.DummyResetOnSwitch > 2 {
		return DefaultConfig(), errors.Errorf("CL_DUMMY_RESET_ON_SWITCH out of range: %d", cfg.DummyResetOnSwitch)
	}
	return cfg, nil
}

// ConfigStore 保存在线配置；帧循环每帧取一次快照
// 身份字段变化时通知 onIdentity，触发对应槽位的身份复核
type ConfigStore struct {
	mu         sync.RWMutex
	cfg        Config
	onIdentity func(slot int)
}

func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{cfg: cfg}
}

// OnIdentityChange 注册身份变化回调
func (s *ConfigStore) OnIdentityChange(fn func(slot int)) {
	s.mu.Lock()
	s.onIdentity = fn
	s.mu.Unlock()
}

// Snapshot 返回当前配置副本
func (s *ConfigStore) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update 在锁内修改配置
func (s *ConfigStore) Update(fn func(cfg *Config)) Config {
	s.mu.Lock()
	old := s.cfg
	fn(&s.cfg)
	cur := s.cfg
	cb := s.onIdentity
	s.mu.Unlock()

	if cb != nil {
		if old.Player != cur.Player {
			cb(0)
		}
		if old.Dummy != cur.Dummy {
			cb(1)
		}
	}
	return cur
}
