package client

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CL_PREDICT", "false")
	t.Setenv("CL_ANTIPING", "true")
	t.Setenv("CL_DUMMY_HAMMER", "1")
	t.Setenv("CL_DUMMY_RESET_ON_SWITCH", "2")
	t.Setenv("CL_MULTIVIEW_MAX_ZOOM", "2.5")
	t.Setenv("PLAYER_NAME", "gamer")
	t.Setenv("PLAYER_COUNTRY", "276")
	t.Setenv("DUMMY_USE_CUSTOM_COLOR", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Predict || !cfg.AntiPing || !cfg.DummyHammer || cfg.DummyResetOnSwitch != 2 {
		t.Fatalf("flags = %+v", cfg)
	}
	if cfg.MaxMultiViewZoom != 2.5 {
		t.Fatalf("max zoom = %v", cfg.MaxMultiViewZoom)
	}
	if cfg.Player.Name != "gamer" || cfg.Player.Country != 276 || !cfg.Dummy.UseCustomColor {
		t.Fatalf("identities = %+v / %+v", cfg.Player, cfg.Dummy)
	}
	if cfg.Dummy.Name != DefaultConfig().Dummy.Name {
		t.Fatalf("unset keys should keep defaults")
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CL_PREDICT", "maybe"},
		{"CL_TUNING_TIMEOUT_TICKS", "soon"},
		{"CL_MULTIVIEW_SMOOTHING", "smooth"},
		{"CL_DUMMY_RESET_ON_SWITCH", "3"},
		{"CL_DUMMY_RESET_ON_SWITCH", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !reflect.DeepEqual(cfg, DefaultConfig()) {
				t.Fatalf("invalid config should fall back to defaults")
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.env")
	content := "DUMMY_CLAN=twins\nCL_TUNING_TIMEOUT_TICKS=77\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("DUMMY_CLAN")
		os.Unsetenv("CL_TUNING_TIMEOUT_TICKS")
	})

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Dummy.Clan != "twins" || cfg.TuningTimeoutTicks != 77 {
		t.Fatalf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestConfigStoreIdentityCallbacks(t *testing.T) {
	store := NewConfigStore(DefaultConfig())
	var slots []int
	store.OnIdentityChange(func(slot int) { slots = append(slots, slot) })

	store.Update(func(cfg *Config) { cfg.Predict = false })
	if len(slots) != 0 {
		t.Fatalf("non-identity change triggered callback: %v", slots)
	}
	store.Update(func(cfg *Config) { cfg.Dummy.Skin = "pinky" })
	store.Update(func(cfg *Config) {
		cfg.Player.Clan = "x"
		cfg.Dummy.Clan = "y"
	})
	if !reflect.DeepEqual(slots, []int{1, 0, 1}) {
		t.Fatalf("callbacks = %v", slots)
	}
	if got := store.Snapshot(); got.Predict || got.Dummy.Skin != "pinky" {
		t.Fatalf("snapshot = %+v", got)
	}
}
