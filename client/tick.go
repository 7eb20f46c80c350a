package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const (
	// FramesPerSecond 渲染帧率
	FramesPerSecond = 60
)

var frameInterval = time.Second / FramesPerSecond

// ErrDisconnected 传输层已断开；帧循环退出，由调用方决定重连
var ErrDisconnected = errors.New("transport disconnected")

func inSession(s ConnState) bool {
	return s == StateOnline || s == StateDemoPlayback
}

// syncConnState 跟踪连接状态变化
// 离开对局（在线/回放 → 其它）时重置；进入对局时初始化地图并发送身份；掉线时返回 ErrDisconnected
func (c *GameClient) syncConnState(cfg Config) error {
	state := c.net.State()
	prev := c.lastState
	if state == prev {
		return nil
	}
	c.lastState = state
	Log.Infof("connection state %v -> %v", prev, state)

	if inSession(prev) {
		c.Reset()
	}
	switch {
	case inSession(state):
		return c.OnConnected(cfg)
	case state == StateOffline:
		return ErrDisconnected
	}
	return nil
}

// QueueInput 输入层投递按键事件，可从任意 goroutine 调用；队列满时丢弃并返回 false
func (c *GameClient) QueueInput(ev InputEvent) bool {
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// dispatchInputs 在帧开头把排队的按键事件分发给组件
func (c *GameClient) dispatchInputs() {
	for {
		select {
		case ev := <-c.events:
			c.comps.DispatchInput(ev)
		default:
			return
		}
	}
}

// sendInputs 每个新的预测 Tick 为两个连接各采样一次输入
func (c *GameClient) sendInputs(cfg Config) {
	if c.net.State() != StateOnline {
		return
	}
	force := c.mux.Swapping()
	for role := 0; role < NumDummies; role++ {
		conn := c.mux.Active()
		if role == 1 {
			if !c.DummyConnected() {
				continue
			}
			conn = 1 - conn
		}
		tick := c.net.PredGameTick(conn)
		if tick <= c.lastInputTick[conn] {
			continue
		}
		c.lastInputTick[conn] = tick

		in, size := c.SnapshotInput(cfg, role, force)
		if size == 0 {
			c.metrics.IncInputsSkipped()
			continue
		}
		if err := c.sender.SendInput(conn, tick, in); err != nil {
			Log.Warnf("send input failed: slot=%d tick=%d err=%v", conn, tick, err)
			continue
		}
		c.metrics.IncInputsSent()
	}
}

// SnapshotInput 生成某个角色槽位的输入帧，非空帧写入预测用的输入历史
func (c *GameClient) SnapshotInput(cfg Config, slot int, force bool) (Input, int) {
	in, size := c.mux.SnapshotInput(cfg, slot, force)
	if size > 0 && c.net != nil {
		conn := c.mux.Active()
		if slot == 1 {
			conn = 1 - conn
		}
		c.history.Add(conn, c.net.PredGameTick(conn), in)
	}
	return in, size
}

// SwapControllers 交换本地输入驱动的角色
func (c *GameClient) SwapControllers(cfg Config) {
	if !c.DummyConnected() && c.mux.Active() == 0 {
		Log.Debugf("swap ignored: dummy not connected")
		return
	}
	c.mux.SwapControllers(cfg)
}

// pollTuning 拉取网络层收到的调参消息
func (c *GameClient) pollTuning() {
	src, ok := c.net.(TuningSource)
	if !ok {
		return
	}
	for {
		msg, ok := src.PollTuning()
		if !ok {
			return
		}
		c.tuning.Apply(msg.Zone, msg.Params)
	}
}

// OnRender 渲染阶段：多视角激活 → 位置计算 → 组件渲染 → 身份复核
func (c *GameClient) OnRender(cfg Config) {
	c.activateMultiView()
	c.UpdatePositions(cfg)
	c.UpdateSpectatorCursor()

	c.comps.RenderAll()

	wasNewTick := c.newTick
	c.newTick = false
	c.mux.EndFrame()

	dummyConnected := c.DummyConnected()
	if c.mux.Active() == 1 && !dummyConnected {
		c.mux.ForceActive(0)
	}
	if dummyConnected != c.lastDummyConnected {
		Log.Infof("dummy connected=%v", dummyConnected)
		c.lastDummyConnected = dummyConnected
	}

	c.CheckIdentity(cfg, wasNewTick)
}

// RunFrame 单帧：连接状态 → 输入采样 → 快照交接与预测 → 位置计算与渲染 → 身份复核
// 连接断开或初始化失败时返回错误，本帧不再推进
func (c *GameClient) RunFrame(cfg Config) error {
	start := time.Now()
	if cfg.TuningTimeoutTicks > 0 {
		c.tuning.SetWindow(cfg.TuningTimeoutTicks)
	}
	if err := c.syncConnState(cfg); err != nil {
		c.publish()
		return err
	}
	c.applyIdentityRequests()
	c.dispatchInputs()

	c.sendInputs(cfg)

	if pair := c.net.Snapshots(); pair != nil && pair != c.snap {
		c.OnNewSnapshot(pair)
	}
	c.pollTuning()
	c.Predict(cfg)

	c.OnRender(cfg)
	c.publish()

	c.metrics.AddFrame(time.Since(start).Nanoseconds())
	return nil
}

// Run 启动帧循环（单 goroutine 推进）
// ctx 取消时返回 ctx.Err()，连接断开时返回 ErrDisconnected
func (c *GameClient) Run(ctx context.Context, store *ConfigStore) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.RunFrame(store.Snapshot()); err != nil {
				return err
			}
		}
	}
}
