package client

// 按键名
const (
	KeySwapDummy   = "swap"
	KeyDummyHammer = "hammer"
)

// DummyKeys dummy 相关快捷键：交换受控角色、切换自动锤击
type DummyKeys struct {
	client *GameClient
	store  *ConfigStore
}

func NewDummyKeys(client *GameClient, store *ConfigStore) *DummyKeys {
	return &DummyKeys{client: client, store: store}
}

func (k *DummyKeys) OnInit()   {}
func (k *DummyKeys) OnReset()  {}
func (k *DummyKeys) OnRender() {}

// OnInput 只响应按下事件
func (k *DummyKeys) OnInput(ev InputEvent) bool {
	if !ev.Pressed {
		return false
	}
	switch ev.Key {
	case KeySwapDummy:
		k.client.SwapControllers(k.store.Snapshot())
		return true
	case KeyDummyHammer:
		cfg := k.store.Update(func(cfg *Config) { cfg.DummyHammer = !cfg.DummyHammer })
		Log.Infof("dummy hammer=%v", cfg.DummyHammer)
		return true
	}
	return false
}
