package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	tickInterval = time.Second / TickSpeed // 20ms
	pingInterval = 15 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 5 * time.Second
)

// WSTransport WebSocket 传输：读协程交付快照对，写协程发送输入与身份
// 实现 Network、Sender 与 TuningSource
type WSTransport struct {
	ws   *websocket.Conn
	send chan []byte

	snaps          atomic.Pointer[SnapPair]
	state          atomic.Int32
	dummyConnected atomic.Bool
	tunings        chan TuningMessage

	mu           sync.Mutex
	gameTick     int
	prevGameTick int
	tickRecv     time.Time
	margin       int

	sendMu    sync.Mutex
	closed    bool
	closeOnce sync.Once
	metrics   *ClientMetrics
	now       func() time.Time
}

// Dial 连接服务端并启动读写协程
// margin 为预测领先服务端的 Tick 数
func Dial(ctx context.Context, url string, margin int, metrics *ClientMetrics) (*WSTransport, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	t := newWSTransport(ws, margin, metrics)
	go t.writePump()
	go t.readPump()
	return t, nil
}

func newWSTransport(ws *websocket.Conn, margin int, metrics *ClientMetrics) *WSTransport {
	if metrics == nil {
		metrics = &ClientMetrics{}
	}
	t := &WSTransport{
		ws:           ws,
		send:         make(chan []byte, 64),
		tunings:      make(chan TuningMessage, 64),
		gameTick:     TickUnset,
		prevGameTick: TickUnset,
		margin:       margin,
		metrics:      metrics,
		now:          time.Now,
	}
	t.state.Store(int32(StateLoading))
	return t
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (t *WSTransport) Enqueue(b []byte) bool {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	if t.closed {
		return false
	}
	select {
	case t.send <- b:
		return true
	default:
		return false
	}
}

// Close 关闭底层连接，写协程随之退出
func (t *WSTransport) Close() {
	t.closeOnce.Do(func() {
		t.state.Store(int32(StateOffline))
		t.sendMu.Lock()
		t.closed = true
		close(t.send)
		t.sendMu.Unlock()
		_ = t.ws.Close()
	})
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (t *WSTransport) writePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer t.ws.Close()
	for {
		select {
		case msg, ok := <-t.send:
			if !ok {
				_ = t.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			t.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := t.ws.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				Log.Warnf("ws write: %v", err)
				return
			}
		case <-ping.C:
			t.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := t.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取服务端消息；快照以原子指针整体替换
func (t *WSTransport) readPump() {
	defer func() {
		t.state.Store(int32(StateOffline))
		t.dummyConnected.Store(false)
	}()
	t.ws.SetReadLimit(1 << 20) // 1MB
	t.ws.SetReadDeadline(time.Now().Add(readTimeout))
	t.ws.SetPongHandler(func(string) error { t.ws.SetReadDeadline(time.Now().Add(readTimeout)); return nil })

	for {
		_, payload, err := t.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Log.Warnf("ws read: %v", err)
			}
			return
		}
		if err := t.handle(payload); err != nil {
			t.metrics.IncSnapshotsDropped()
			Log.Debugf("drop message: %v", err)
		}
	}
}

func (t *WSTransport) handle(payload []byte) error {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		return err
	}
	switch env.T {
	case MsgSnapshot:
		snap, err := DecodePayload[Snapshot](env)
		if err != nil {
			return err
		}
		t.publish(&snap)
	case MsgTuning:
		tm, err := DecodePayload[TuningMessage](env)
		if err != nil {
			return err
		}
		select {
		case t.tunings <- tm:
		default:
			Log.Warnf("tuning queue full, drop zone %d", tm.Zone)
		}
	case MsgDummyState:
		ds, err := DecodePayload[DummyStateMessage](env)
		if err != nil {
			return err
		}
		t.dummyConnected.Store(ds.Connected)
	case MsgReady:
		t.state.Store(int32(StateOnline))
	default:
		return errors.Errorf("unknown message type %#x", env.T)
	}
	return nil
}

// publish 以新快照构造快照对并原子替换；旧 Tick 的快照被忽略
func (t *WSTransport) publish(snap *Snapshot) {
	t.mu.Lock()
	if snap.Tick <= t.gameTick {
		t.mu.Unlock()
		return
	}
	t.prevGameTick = t.gameTick
	t.gameTick = snap.Tick
	t.tickRecv = t.now()
	t.mu.Unlock()

	prev := snap
	if old := t.snaps.Load(); old != nil {
		prev = old.Cur
	}
	t.snaps.Store(&SnapPair{Prev: prev, Cur: snap})
}

func (t *WSTransport) State() ConnState     { return ConnState(t.state.Load()) }
func (t *WSTransport) Snapshots() *SnapPair { return t.snaps.Load() }
func (t *WSTransport) DummyConnected() bool { return t.dummyConnected.Load() }

func (t *WSTransport) GameTick(int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gameTick
}

func (t *WSTransport) PrevGameTick(int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prevGameTick
}

// elapsedTicks 自最近一次快照到达后经过的 Tick 数（含小数）
func (t *WSTransport) elapsedTicks() float64 {
	if t.tickRecv.IsZero() {
		return 0
	}
	return float64(t.now().Sub(t.tickRecv)) / float64(tickInterval)
}

func (t *WSTransport) IntraGameTick(int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clamp01(t.elapsedTicks())
}

func (t *WSTransport) PredGameTick(int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gameTick == TickUnset {
		return TickUnset
	}
	return t.gameTick + t.margin + int(t.elapsedTicks())
}

func (t *WSTransport) PredIntraGameTick(int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.elapsedTicks()
	return e - float64(int(e))
}

// PollTuning 取出一条调参消息（非阻塞）
func (t *WSTransport) PollTuning() (TuningMessage, bool) {
	select {
	case tm := <-t.tunings:
		return tm, true
	default:
		return TuningMessage{}, false
	}
}

func (t *WSTransport) sendMsg(typ MsgType, payload any) error {
	if t.State() == StateOffline {
		return errors.New("transport closed")
	}
	b, err := Encode(typ, payload)
	if err != nil {
		return err
	}
	if !t.Enqueue(b) {
		return errors.Errorf("send queue full, drop %#x", typ)
	}
	return nil
}

func (t *WSTransport) SendInput(slot, tick int, in Input) error {
	return t.sendMsg(MsgInput, InputMessage{Slot: slot, Tick: tick, Input: in})
}

func (t *WSTransport) SendInfo(slot int, start bool, id Identity) error {
	return t.sendMsg(MsgInfo, InfoMessage{Slot: slot, Start: start, Identity: id})
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
