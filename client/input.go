package client

import "github.com/go-gl/mathgl/mgl64"

// WeaponHammer 锤子武器编号（WantedWeapon 以 +1 编码，0 表示不切换）
const WeaponHammer = 0

// HammerPeriod 自动锤击模式下两次出手之间的 Tick 数
const HammerPeriod = 25

// InputSize 一帧输入在网络上的字节数
const InputSize = 10 * 4

// Input 客户端输入（意图），每个网络 Tick 采样一次发送给服务端
// Fire/Jump 为计数器：奇数表示按下，每次变化服务端都能看到一个边沿
type Input struct {
	Direction    int `msgpack:"dir"`
	TargetX      int `msgpack:"tx"`
	TargetY      int `msgpack:"ty"`
	Jump         int `msgpack:"jump"`
	Fire         int `msgpack:"fire"`
	Hook         int `msgpack:"hook"`
	PlayerFlags  int `msgpack:"flags"`
	WantedWeapon int `msgpack:"wanted_weapon"`
	NextWeapon   int `msgpack:"next_weapon"`
	PrevWeapon   int `msgpack:"prev_weapon"`
}

// Idle 没有方向、跳跃、钩子意图
func (in Input) Idle() bool {
	return in.Direction == 0 && in.Jump == 0 && in.Hook == 0
}

// Controls 外部输入采样器：保存每个槽位的输入状态
type Controls interface {
	// SnapInput 采样当前受控槽位的输入帧，返回字节数（0 表示本 Tick 不发送）
	SnapInput(active int, force bool) (Input, int)
	InputData(slot int) *Input
	ResetInput(slot int)
	// Reset 丢弃全部输入状态与发送记录
	Reset()
}

// AimSource 自动锤击瞄准所需的位置与连接信息
type AimSource interface {
	LocalPos() mgl64.Vec2
	DummyPredictedPos() mgl64.Vec2
	DummyConnected() bool
}

// LocalControls 基于内存的 Controls 实现，由输入层（键盘/手柄）写入意图
type LocalControls struct {
	data     [NumDummies]Input
	lastSent [NumDummies]Input
	sent     [NumDummies]bool
}

func NewLocalControls() *LocalControls {
	return &LocalControls{}
}

// SnapInput 输入变化或强制发送时输出一帧
func (c *LocalControls) SnapInput(active int, force bool) (Input, int) {
	in := c.data[active]
	if !force && c.sent[active] && in == c.lastSent[active] {
		return Input{}, 0
	}
	c.lastSent[active] = in
	c.sent[active] = true
	return in, InputSize
}

func (c *LocalControls) InputData(slot int) *Input { return &c.data[slot] }

// ResetInput 清除方向与跳跃意图，Fire 计数保留以免服务端误判边沿
func (c *LocalControls) ResetInput(slot int) {
	in := &c.data[slot]
	in.Direction = 0
	in.Jump = 0
	if in.Fire&1 != 0 {
		in.Fire++
	}
	c.sent[slot] = false
}

// Reset 清空意图与已发送记录，下一次采样必定输出一帧
func (c *LocalControls) Reset() {
	c.data = [NumDummies]Input{}
	c.lastSent = [NumDummies]Input{}
	c.sent = [NumDummies]bool{}
}

// InputMux 输入复用器：为主控与 dummy 两个槽位生成输出帧
type InputMux struct {
	controls Controls
	aim      AimSource

	active      int // 当前由本地输入驱动的连接
	dummyInput  Input
	hammerInput Input
	hammerTick  int
	fireLatch   [NumDummies]int
	swapping    bool
}

func NewInputMux(controls Controls, aim AimSource) *InputMux {
	return &InputMux{controls: controls, aim: aim}
}

// Active 当前受控连接编号；dummy 连接为 1-Active
func (m *InputMux) Active() int { return m.active }

func (m *InputMux) dummySlot() int { return 1 - m.active }

// FireLatch 某个连接上挂起的 fire 锁存值
func (m *InputMux) FireLatch(slot int) int { return m.fireLatch[slot] }

// Swapping 本帧是否刚刚交换过控制
func (m *InputMux) Swapping() bool { return m.swapping }

// Reset 清空所有复用状态
func (m *InputMux) Reset() {
	m.active = 0
	m.dummyInput = Input{}
	m.hammerInput = Input{}
	m.hammerTick = 0
	m.fireLatch = [NumDummies]int{}
	m.swapping = false
}

// SnapshotInput 生成某个角色槽位的输入帧
// slot 0 为主控（委托给 Controls），slot 1 为 dummy
func (m *InputMux) SnapshotInput(cfg Config, slot int, force bool) (Input, int) {
	if slot == 0 {
		return m.controls.SnapInput(m.active, force)
	}
	if !m.aim.DummyConnected() {
		return Input{}, 0
	}
	dummy := m.dummySlot()

	if !cfg.DummyHammer {
		if m.fireLatch[dummy] != 0 {
			// 从锤击模式切回时释放开火，保证计数为偶数
			m.dummyInput.Fire = (m.hammerInput.Fire + 1) &^ 1
			m.fireLatch[dummy] = 0
			m.hammerTick = 0
		}
		if !force && m.dummyInput.Idle() {
			return Input{}, 0
		}
		return m.dummyInput, InputSize
	}

	if m.hammerTick%HammerPeriod != 0 {
		m.hammerTick++
		return Input{}, 0
	}
	m.hammerTick++

	m.hammerInput.Fire++
	m.hammerInput.WantedWeapon = WeaponHammer + 1
	if !cfg.DummyRestoreWeapon {
		m.dummyInput.WantedWeapon = WeaponHammer + 1
	}
	dir := m.aim.LocalPos().Sub(m.aim.DummyPredictedPos())
	m.hammerInput.TargetX = int(dir.X())
	m.hammerInput.TargetY = int(dir.Y())
	m.fireLatch[dummy] = m.hammerInput.Fire

	return m.hammerInput, InputSize
}

// SwapControllers 交换本地输入驱动的连接
// 只有 fire 锁存值跨越交换边界：它始终属于当前的 dummy 连接
func (m *InputMux) SwapControllers(cfg Config) {
	oldActive := m.active
	m.active = 1 - oldActive

	if cfg.DummyResetOnSwitch != 0 {
		slot := oldActive
		if cfg.DummyResetOnSwitch == 2 {
			slot = m.active
		}
		m.controls.ResetInput(slot)
		m.controls.InputData(slot).Hook = 0
	}

	latch := m.fireLatch[m.active]
	m.fireLatch[m.active] = 0
	m.fireLatch[oldActive] = latch

	m.dummyInput = *m.controls.InputData(oldActive)
	m.swapping = true
}

// EndFrame 清除帧内标志
func (m *InputMux) EndFrame() { m.swapping = false }

// ForceActive 在 dummy 断开时回落到主连接
func (m *InputMux) ForceActive(slot int) { m.active = slot }
