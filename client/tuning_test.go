package client

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestTuningExpectationWindow(t *testing.T) {
	const window = 100
	metrics := &ClientMetrics{}
	ts := NewTuningState(window, metrics)

	if !ts.Expect(5, 1000) {
		t.Fatalf("first expectation should register")
	}
	if ts.Expect(5, 1010) {
		t.Fatalf("second expectation for a pending zone should be ignored")
	}
	if !ts.Pending(5, 1000+window-1) {
		t.Fatalf("zone should be pending just before the window ends")
	}
	if !ts.Pending(5, 1000+window) {
		t.Fatalf("zone should be pending at the window boundary")
	}

	if n := ts.Expire(1000 + window); n != 0 {
		t.Fatalf("expired %d at boundary, want 0", n)
	}
	if n := ts.Expire(1000 + window + 1); n != 1 {
		t.Fatalf("expired %d after window, want 1", n)
	}
	if ts.Pending(5, 1000+window+1) {
		t.Fatalf("zone still pending after expiry")
	}
	if metrics.TuningExpired != 1 {
		t.Fatalf("expired metric = %d", metrics.TuningExpired)
	}

	// 过期后可以重新登记
	if !ts.Expect(5, 1200) {
		t.Fatalf("expectation should be re-requestable after expiry")
	}
}

func TestTuningApplyClearsExpectation(t *testing.T) {
	ts := NewTuningState(100, nil)
	ts.Expect(3, 10)

	p := DefaultTuning()
	p.Gravity = 0.25
	ts.Apply(3, p)

	if ts.Pending(3, 11) || ts.NumPending() != 0 {
		t.Fatalf("expectation not cleared by apply")
	}
	if !ts.Received(3) || ts.Params(3).Gravity != 0.25 {
		t.Fatalf("params not stored: %+v", ts.Params(3))
	}
	if ts.Params(-1) != ts.Params(0) || ts.Params(NumTuneZones) != ts.Params(0) {
		t.Fatalf("invalid zones should fall back to zone 0")
	}

	ts.Apply(NumTuneZones+1, p)
	if ts.NumPending() != 0 {
		t.Fatalf("invalid zone changed state")
	}
}

func TestTuningLocalZoneChange(t *testing.T) {
	ts := NewTuningState(10, nil)
	ts.UpdateLocalZone(0, 4, 100)
	if ts.LocalZone(0) != 4 || !ts.Pending(4, 100) {
		t.Fatalf("entering a zone should expect its params")
	}

	// 同一区域内不会重复登记
	ts.UpdateLocalZone(0, 4, 105)
	if ts.NumPending() != 1 {
		t.Fatalf("pending = %d, want 1", ts.NumPending())
	}

	// 过期且仍未收到时重新请求
	ts.Expire(111)
	ts.UpdateLocalZone(0, 4, 111)
	if !ts.Pending(4, 121) || ts.Pending(4, 122) {
		t.Fatalf("re-requested expectation should start at tick 111")
	}

	ts.Apply(4, DefaultTuning())
	ts.UpdateLocalZone(0, 4, 200)
	if ts.NumPending() != 0 {
		t.Fatalf("received zone should not be re-requested")
	}
}

func TestSnapshotDrivesTuningExpectations(t *testing.T) {
	e := newTestEnv()
	c := e.client
	cur := snap(10, map[int]mgl64.Vec2{0: vec(0, 0)})
	cur.Characters[0] = CharacterState{TuneZone: 9}
	e.predictTo(DefaultConfig(), pairOf(snap(9, nil), cur), 12)

	if c.Tuning().LocalZone(0) != 9 || !c.Tuning().Pending(9, 10) {
		t.Fatalf("snapshot zone not tracked: zone=%d", c.Tuning().LocalZone(0))
	}

	window := DefaultConfig().TuningTimeoutTicks
	later := snap(10+window+1, map[int]mgl64.Vec2{})
	e.predictTo(DefaultConfig(), pairOf(cur, later), 12+window)
	if c.Tuning().NumPending() != 0 {
		t.Fatalf("stale expectation survived: pending=%d", c.Tuning().NumPending())
	}
}

func TestRunFrameAppliesPolledTuning(t *testing.T) {
	e := newTestEnv()
	src := &tuningNet{fakeNet: e.net}
	c := NewGameClient(Options{Network: src, Sender: e.sender, Stepper: e.stepper})
	c.Tuning().Expect(2, 0)

	p := DefaultTuning()
	p.AirFriction = 0.5
	src.queue = append(src.queue, TuningMessage{Zone: 2, Params: p})
	c.RunFrame(DefaultConfig())

	if !c.Tuning().Received(2) || c.Tuning().Params(2).AirFriction != 0.5 {
		t.Fatalf("polled tuning not applied")
	}
	if c.Tuning().NumPending() != 0 {
		t.Fatalf("expectation not cleared")
	}
}

type tuningNet struct {
	*fakeNet
	queue []TuningMessage
}

func (n *tuningNet) PollTuning() (TuningMessage, bool) {
	if len(n.queue) == 0 {
		return TuningMessage{}, false
	}
	tm := n.queue[0]
	n.queue = n.queue[1:]
	return tm, true
}

func TestSimpleStepperFallsAndLands(t *testing.T) {
	w := NewWorld()
	w.Tick = 0
	w.Characters[0] = &Character{ClientID: 0, Pos: vec(0, -10), Active: true}
	ts := NewTuningState(100, nil)
	st := SimpleStepper{FloorY: 0}

	for i := 0; i < 200; i++ {
		st.Step(w, nil, ts)
	}
	ch := w.Characters[0]
	if ch.Pos.Y() != 0 || ch.Vel.Y() != 0 {
		t.Fatalf("character did not land: pos=%v vel=%v", ch.Pos, ch.Vel)
	}
	if w.Tick != 200 {
		t.Fatalf("tick = %d, want 200", w.Tick)
	}

	st.Step(w, map[int]Input{0: {Direction: 1}}, ts)
	if ch.Vel.X() <= 0 || ch.Pos.X() <= 0 {
		t.Fatalf("direction input not applied: pos=%v vel=%v", ch.Pos, ch.Vel)
	}
}
