package client

import (
	"github.com/go-gl/mathgl/mgl64"
)

type fakeNet struct {
	state        ConnState
	pair         *SnapPair
	intra        float64
	predIntra    float64
	gameTick     int
	prevGameTick int
	predTick     int
	dummy        bool
}

func (f *fakeNet) State() ConnState              { return f.state }
func (f *fakeNet) Snapshots() *SnapPair          { return f.pair }
func (f *fakeNet) IntraGameTick(int) float64     { return f.intra }
func (f *fakeNet) PredIntraGameTick(int) float64 { return f.predIntra }
func (f *fakeNet) GameTick(int) int              { return f.gameTick }
func (f *fakeNet) PrevGameTick(int) int          { return f.prevGameTick }
func (f *fakeNet) PredGameTick(int) int          { return f.predTick }
func (f *fakeNet) DummyConnected() bool          { return f.dummy }

type sentInfo struct {
	slot  int
	start bool
	id    Identity
}

type sentInput struct {
	slot, tick int
	in         Input
}

type fakeSender struct {
	infos  []sentInfo
	inputs []sentInput
}

func (f *fakeSender) SendInput(slot, tick int, in Input) error {
	f.inputs = append(f.inputs, sentInput{slot: slot, tick: tick, in: in})
	return nil
}

func (f *fakeSender) SendInfo(slot int, start bool, id Identity) error {
	f.infos = append(f.infos, sentInfo{slot: slot, start: start, id: id})
	return nil
}

// driftStepper 每步把角色沿 x 方向移动 Speed，并叠加输入方向
type driftStepper struct {
	Speed float64
	steps int
}

func (s *driftStepper) Step(w *World, inputs map[int]Input, _ *TuningState) {
	for id, c := range w.Characters {
		c.Pos[0] += s.Speed + float64(inputs[id].Direction)
	}
	w.Tick++
	s.steps++
}

type fakeMap struct {
	inits, unloads int
	switchers      int
}

func (m *fakeMap) Init() error       { m.inits++; return nil }
func (m *fakeMap) Unload()           { m.unloads++ }
func (m *fakeMap) NumSwitchers() int { return m.switchers }

type fakeUI struct{ menu bool }

func (u fakeUI) MenuActive() bool { return u.menu }

type countingComponent struct {
	inits, resets, renders, mapLoads int
	consume                          bool
	events                           []InputEvent
}

func (c *countingComponent) OnInit()    { c.inits++ }
func (c *countingComponent) OnReset()   { c.resets++ }
func (c *countingComponent) OnRender()  { c.renders++ }
func (c *countingComponent) OnMapLoad() { c.mapLoads++ }
func (c *countingComponent) OnInput(ev InputEvent) bool {
	c.events = append(c.events, ev)
	return c.consume
}

type testEnv struct {
	net     *fakeNet
	sender  *fakeSender
	stepper *driftStepper
	mapL    *fakeMap
	client  *GameClient
}

func newTestEnv() *testEnv {
	e := &testEnv{
		net:     &fakeNet{state: StateOnline},
		sender:  &fakeSender{},
		stepper: &driftStepper{Speed: 2},
		mapL:    &fakeMap{},
	}
	e.client = NewGameClient(Options{
		Network:  e.net,
		Sender:   e.sender,
		Stepper:  e.stepper,
		MapLayer: e.mapL,
		Config:   DefaultConfig(),
	})
	return e
}

func vec(x, y float64) mgl64.Vec2 { return mgl64.Vec2{x, y} }

// snap 构造快照；LocalClientIDs 固定为 {0, 1}
func snap(tick int, chars map[int]mgl64.Vec2) *Snapshot {
	s := &Snapshot{
		Tick:           tick,
		Characters:     make(map[int]CharacterState, len(chars)),
		Clients:        map[int]Identity{},
		Teams:          map[int]int{},
		LocalClientIDs: [NumDummies]int{0, 1},
		FlagCarrier:    [2]int{FlagMissing, FlagMissing},
	}
	for id, p := range chars {
		s.Characters[id] = CharacterState{X: p.X(), Y: p.Y()}
	}
	return s
}

func pairOf(prev, cur *Snapshot) *SnapPair {
	return &SnapPair{Prev: prev, Cur: cur}
}

func withGameOver(s *Snapshot) *Snapshot {
	s.GameInfo = &GameInfo{GameStateFlags: GameStateFlagGameOver}
	return s
}
