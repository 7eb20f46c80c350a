package client

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// LoadingDetail 加载回调的细节类型
type LoadingDetail int

const (
	LoadingDetailMap LoadingDetail = iota + 1
	LoadingDetailDemo
)

// LoadingTitle 返回加载界面的标题与消息
// 非法的 detail 属于调用方契约错误：开发构建下 DPanic 直接 panic
func LoadingTitle(detail LoadingDetail, demo bool) (string, string) {
	title := "Connected"
	if detail == LoadingDetailDemo || demo {
		title = "Preparing demo playback"
	}
	switch detail {
	case LoadingDetailMap:
		return title, "Loading map file from storage"
	case LoadingDetailDemo:
		return title, "Loading demo file from storage"
	default:
		Log.DPanicf("invalid loading callback detail %d", detail)
		return title, ""
	}
}

func (c *GameClient) renderLoading(title, msg string) {
	if c.loadingCb != nil {
		c.loadingCb(title, msg)
	}
}

// Reset 原地重置所有对局内可变状态，等价于刚启动后的状态；幂等且不会失败
func (c *GameClient) Reset() {
	c.snap = nil
	c.localChar, c.localPrevChar = CharacterState{}, CharacterState{}
	c.hasLocal, c.hasLocalPrev = false, false
	c.specInfo = SpecInfo{SpectatorID: SpecFreeview}

	c.predictedTick = TickUnset
	for i := range c.slots {
		c.slots[i].Reset()
		c.lastInputTick[i] = TickUnset
	}

	c.lastRoundStartTick = TickUnset
	c.lastFlagCarrier = [2]int{FlagMissing, FlagMissing}

	c.gameOver = false
	c.paused = false
	c.newTick = false

	c.demoSpecID = SpecFollow
	c.localPos = mgl64.Vec2{}
	for i := range c.localIDs {
		c.localIDs[i] = -1
	}

	c.predictedChar = Character{}
	c.predictedPrevChar = Character{}

	c.tuning.Reset()
	c.history.Reset()
	c.controls.Reset()
	c.mux.Reset()

	c.gameWorld.Clear()
	c.gameWorld.InfiniteAmmo = true
	c.predicted.CopyWorld(c.gameWorld)
	c.prevPredicted.CopyWorld(c.predicted)

	c.multiView = MultiView{}
	c.multiViewActivated = false
	c.cursor = CursorInfo{OwnerID: -1}

	c.lastDummyConnected = false
	for i := range c.identityRequests {
		c.identityRequests[i].Store(false)
	}

	c.comps.ResetAll()
	c.mapLayer.Unload()
	c.metrics.IncResets()
}

// OnLoading 地图/回放加载器的进度回调，标题与消息统一由 LoadingTitle 生成
func (c *GameClient) OnLoading(detail LoadingDetail) string {
	title, msg := LoadingTitle(detail, c.net.State() == StateDemoPlayback)
	c.renderLoading(title, msg)
	return title
}

// OnConnected 连接建立（或回放开始）后初始化地图逻辑并发送首次身份
func (c *GameClient) OnConnected(cfg Config) error {
	demo := c.net.State() == StateDemoPlayback
	title := c.OnLoading(LoadingDetailMap)
	c.renderLoading(title, "Initializing map logic")
	if err := c.mapLayer.Init(); err != nil {
		return errors.Wrap(err, "init map layer")
	}
	c.gameWorld.InitSwitchers(c.mapLayer.NumSwitchers())

	c.comps.MapLoadAll()
	c.comps.ResetAll()

	c.renderLoading(title, "Sending initial client info")
	if !demo {
		c.sendInfo(0, true, cfg.Player)
	}
	Log.Infof("connected: switchers=%d demo=%v", c.mapLayer.NumSwitchers(), demo)
	return nil
}
