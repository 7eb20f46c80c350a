package client

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// Network 网络/传输层（外部协作者）
type Network interface {
	State() ConnState
	// Snapshots 返回当前快照对；网络层整体替换，核心只读
	Snapshots() *SnapPair
	IntraGameTick(slot int) float64
	PredIntraGameTick(slot int) float64
	GameTick(slot int) int
	PrevGameTick(slot int) int
	PredGameTick(slot int) int
	DummyConnected() bool
}

// Sender 发往服务端的消息（输入帧、身份声明）
type Sender interface {
	SendInput(slot, tick int, in Input) error
	SendInfo(slot int, start bool, id Identity) error
}

// TuningSource 可选能力：网络层收到的调参消息，由帧循环拉取
type TuningSource interface {
	PollTuning() (TuningMessage, bool)
}

// MapLayer 地图/碰撞层（外部协作者）
type MapLayer interface {
	Init() error
	Unload()
	NumSwitchers() int
}

// UIState 菜单/控制台是否独占焦点
type UIState interface {
	MenuActive() bool
}

// Options 构造 GameClient 时注入的协作者；nil 的可选项使用空实现
type Options struct {
	Network    Network
	Sender     Sender
	Stepper    Stepper
	Controls   Controls
	MapLayer   MapLayer
	UI         UIState
	Components *Components
	Metrics    *ClientMetrics
	// RenderLoading 加载进度回调（title, message）
	RenderLoading func(title, message string)
	Config        Config
}

// GameClient 同步核心：持有快照派生状态、预测世界、输入复用与观战状态
// 所有方法只在帧循环所在的单个 goroutine 中调用
type GameClient struct {
	net       Network
	sender    Sender
	stepper   Stepper
	mapLayer  MapLayer
	ui        UIState
	comps     *Components
	metrics   *ClientMetrics
	loadingCb func(title, message string)
	controls  Controls
	mux       *InputMux
	history   *InputHistory
	tuning    *TuningState

	lastState ConnState
	events    chan InputEvent

	snap          *SnapPair
	localChar     CharacterState
	localPrevChar CharacterState
	hasLocal      bool
	hasLocalPrev  bool
	specInfo      SpecInfo

	gameOver           bool
	paused             bool
	lastRoundStartTick int
	lastFlagCarrier    [2]int
	demoSpecID         int
	localIDs           [NumDummies]int
	localPos           mgl64.Vec2

	predictedTick int
	slots         [NumDummies]Slot
	newTick       bool
	lastInputTick [NumDummies]int

	gameWorld         *World
	predicted         *World
	prevPredicted     *World
	predictedChar     Character
	predictedPrevChar Character

	multiView          MultiView
	multiViewActivated bool
	cursor             CursorInfo

	lastDummyConnected bool
	identityRequests   [NumDummies]atomic.Bool
	published          atomic.Pointer[Diagnostics]
}

type nopMapLayer struct{}

func (nopMapLayer) Init() error       { return nil }
func (nopMapLayer) Unload()           {}
func (nopMapLayer) NumSwitchers() int { return 0 }

type nopSender struct{}

func (nopSender) SendInput(int, int, Input) error    { return nil }
func (nopSender) SendInfo(int, bool, Identity) error { return nil }

// NewGameClient 创建核心并执行一次 Reset
func NewGameClient(opts Options) *GameClient {
	c := &GameClient{
		net:       opts.Network,
		sender:    opts.Sender,
		stepper:   opts.Stepper,
		mapLayer:  opts.MapLayer,
		ui:        opts.UI,
		comps:     opts.Components,
		metrics:   opts.Metrics,
		loadingCb: opts.RenderLoading,
		controls:  opts.Controls,
		events:    make(chan InputEvent, 64),
	}
	if c.sender == nil {
		c.sender = nopSender{}
	}
	if c.stepper == nil {
		c.stepper = SimpleStepper{}
	}
	if c.mapLayer == nil {
		c.mapLayer = nopMapLayer{}
	}
	if c.comps == nil {
		c.comps = &Components{}
	}
	if c.metrics == nil {
		c.metrics = &ClientMetrics{}
	}
	if c.controls == nil {
		c.controls = NewLocalControls()
	}
	window := opts.Config.TuningTimeoutTicks
	if window <= 0 {
		window = DefaultConfig().TuningTimeoutTicks
	}
	c.mux = NewInputMux(c.controls, c)
	c.history = NewInputHistory(TickSpeed * 4)
	c.tuning = NewTuningState(window, c.metrics)
	c.gameWorld = NewWorld()
	c.predicted = NewWorld()
	c.prevPredicted = NewWorld()

	c.comps.InitAll()
	c.Reset()
	return c
}

// LocalPos 渲染用的本地角色位置
func (c *GameClient) LocalPos() mgl64.Vec2 { return c.localPos }

// DummyPredictedPos dummy 角色的预测位置
func (c *GameClient) DummyPredictedPos() mgl64.Vec2 {
	id := c.localIDs[1-c.mux.Active()]
	if ch, ok := c.predicted.Character(id); ok {
		return ch.Pos
	}
	return mgl64.Vec2{}
}

// DummyConnected dummy 连接是否就绪
func (c *GameClient) DummyConnected() bool {
	return c.net != nil && c.net.DummyConnected()
}

// SpecInfo 观战位置与有效标志
func (c *GameClient) SpecInfo() SpecInfo { return c.specInfo }

// MultiViewActive 多视角是否激活
func (c *GameClient) MultiViewActive() bool { return c.multiViewActivated }

// SetMultiViewActivated 由观战 UI 打开/关闭多视角
func (c *GameClient) SetMultiViewActivated(on bool) { c.multiViewActivated = on }

// MultiView 当前多视角状态副本
func (c *GameClient) MultiView() MultiView {
	mv := c.multiView
	mv.Tracked = append([]int(nil), c.multiView.Tracked...)
	return mv
}

// Cursor 观战光标
func (c *GameClient) Cursor() CursorInfo { return c.cursor }

// CheckCountdown 身份复核倒计时（诊断用）
func (c *GameClient) CheckCountdown(slot int) int { return c.slots[slot].CheckCountdown() }

// SlotState 槽位同步状态（诊断用）
func (c *GameClient) SlotState(slot int) SlotState { return c.slots[slot].State() }

// SetDemoSpecID 回放中指定观战目标（SpecFollow 跟随录制者）
func (c *GameClient) SetDemoSpecID(id int) { c.demoSpecID = id }

// Tuning 调参状态
func (c *GameClient) Tuning() *TuningState { return c.tuning }

// Mux 输入复用器
func (c *GameClient) Mux() *InputMux { return c.mux }

// Metrics 运行指标
func (c *GameClient) Metrics() *ClientMetrics { return c.metrics }

// GameOver 当前快照是否为游戏结束
func (c *GameClient) GameOver() bool { return c.gameOver }

// Attach 重连后换上新的传输层并重置；只能在帧循环未运行时调用
func (c *GameClient) Attach(n Network, s Sender) {
	c.net = n
	c.sender = s
	if c.sender == nil {
		c.sender = nopSender{}
	}
	c.lastState = StateOffline
	c.Reset()
}

// RequestIdentityCheck 配置中身份变化时调用（任意 goroutine），下一帧生效
func (c *GameClient) RequestIdentityCheck(slot int) {
	if slot < 0 || slot >= NumDummies {
		return
	}
	c.identityRequests[slot].Store(true)
}

func (c *GameClient) applyIdentityRequests() {
	for i := range c.identityRequests {
		if c.identityRequests[i].Swap(false) {
			c.slots[i].RequestCheck()
		}
	}
}

// Diagnostics 可观察状态（供 UI、/metrics 与测试比较）
type Diagnostics struct {
	State              string     `json:"state"`
	LocalPos           [2]float64 `json:"localPos"`
	SpecInfo           SpecInfo   `json:"specInfo"`
	MultiViewActive    bool       `json:"multiViewActive"`
	MultiViewInit      bool       `json:"multiViewInit"`
	ActiveSlot         int        `json:"activeSlot"`
	PredictedTick      int        `json:"predictedTick"`
	LastPredictedTick  [2]int     `json:"lastPredictedTick"`
	CheckCountdown     [2]int     `json:"checkCountdown"`
	SlotStates         [2]string  `json:"slotStates"`
	GameOver           bool       `json:"gameOver"`
	Paused             bool       `json:"paused"`
	LastFlagCarrier    [2]int     `json:"lastFlagCarrier"`
	LastRoundStartTick int        `json:"lastRoundStartTick"`
	LocalIDs           [2]int     `json:"localIds"`
	DemoSpecID         int        `json:"demoSpecId"`
	PendingTuning      int        `json:"pendingTuning"`
	LocalTuneZones     [2]int     `json:"localTuneZones"`
	FireLatch          [2]int     `json:"fireLatch"`
	CursorOwner        int        `json:"cursorOwner"`
	SnapshotValid      bool       `json:"snapshotValid"`
	PredictedEntities  int        `json:"predictedEntities"`
}

// Published 最近一帧发布的诊断状态（任意 goroutine 可读）
func (c *GameClient) Published() (Diagnostics, bool) {
	d := c.published.Load()
	if d == nil {
		return Diagnostics{}, false
	}
	return *d, true
}

func (c *GameClient) publish() {
	d := c.Diagnostics()
	c.published.Store(&d)
}

// Diagnostics 当前状态（只能在帧循环 goroutine 调用）
func (c *GameClient) Diagnostics() Diagnostics {
	d := Diagnostics{
		LocalPos:           [2]float64{c.localPos.X(), c.localPos.Y()},
		SpecInfo:           c.specInfo,
		MultiViewActive:    c.multiViewActivated,
		MultiViewInit:      c.multiView.IsInit,
		ActiveSlot:         c.mux.Active(),
		PredictedTick:      c.predictedTick,
		GameOver:           c.gameOver,
		Paused:             c.paused,
		LastFlagCarrier:    c.lastFlagCarrier,
		LastRoundStartTick: c.lastRoundStartTick,
		LocalIDs:           c.localIDs,
		DemoSpecID:         c.demoSpecID,
		PendingTuning:      c.tuning.NumPending(),
		CursorOwner:        c.cursor.OwnerID,
		SnapshotValid:      c.snap.Valid(),
		PredictedEntities:  len(c.predicted.Characters),
	}
	if c.net != nil {
		d.State = c.net.State().String()
	}
	for i := 0; i < NumDummies; i++ {
		d.LastPredictedTick[i] = c.slots[i].LastNewPredictedTick()
		d.CheckCountdown[i] = c.slots[i].CheckCountdown()
		d.SlotStates[i] = c.slots[i].State().String()
		d.LocalTuneZones[i] = c.tuning.LocalZone(i)
		d.FireLatch[i] = c.mux.FireLatch(i)
	}
	return d
}
