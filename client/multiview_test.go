package client

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func teamSnap(tick int, chars map[int]mgl64.Vec2, teams map[int]int) *Snapshot {
	s := snap(tick, chars)
	for id, team := range teams {
		s.Teams[id] = team
	}
	s.Spectating = true
	return s
}

func TestInitMultiViewTracksTeam(t *testing.T) {
	e := newTestEnv()
	c := e.client
	chars := map[int]mgl64.Vec2{2: vec(0, 0), 3: vec(10, 0), 4: vec(20, 0)}
	teams := map[int]int{2: TeamBlue, 3: TeamRed, 4: TeamBlue}
	e.predictTo(DefaultConfig(), pairOf(teamSnap(9, chars, teams), teamSnap(10, chars, teams)), 12)

	if !c.InitMultiView(TeamBlue) {
		t.Fatalf("expected blue players to be found")
	}
	mv := c.MultiView()
	if !mv.IsInit || mv.Team != TeamBlue || len(mv.Tracked) != 2 || mv.Tracked[0] != 2 || mv.Tracked[1] != 4 {
		t.Fatalf("multi view = %+v", mv)
	}
}

func TestInitMultiViewClampsTeam(t *testing.T) {
	for _, team := range []int{-1, MaxClients + 1, 1000} {
		e := newTestEnv()
		c := e.client
		chars := map[int]mgl64.Vec2{0: vec(0, 0)}
		e.predictTo(DefaultConfig(), pairOf(teamSnap(9, chars, nil), teamSnap(10, chars, nil)), 12)

		if !c.InitMultiView(team) {
			t.Fatalf("team %d should fall back to team 0", team)
		}
		if c.MultiView().Team != 0 {
			t.Fatalf("team = %d, want 0", c.MultiView().Team)
		}
	}
}

func TestInitMultiViewWithoutPlayersFails(t *testing.T) {
	e := newTestEnv()
	c := e.client
	e.predictTo(DefaultConfig(), pairOf(teamSnap(9, nil, nil), teamSnap(10, nil, nil)), 12)

	if c.InitMultiView(0) {
		t.Fatalf("expected failure without players")
	}
	if c.MultiView().IsInit {
		t.Fatalf("multi view initialised without players")
	}
}

func TestActivatedMultiViewFallsBackWhenEmpty(t *testing.T) {
	e := newTestEnv()
	c := e.client
	e.predictTo(DefaultConfig(), pairOf(teamSnap(9, nil, nil), teamSnap(10, nil, nil)), 12)
	c.SetMultiViewActivated(true)

	c.OnRender(DefaultConfig())
	if c.MultiView().IsInit {
		t.Fatalf("multi view should reset when no players are found")
	}
}

func TestMultiViewCentersOnTrackedPlayers(t *testing.T) {
	e := newTestEnv()
	c := e.client
	cfg := DefaultConfig()
	cfg.Predict = false
	chars := map[int]mgl64.Vec2{0: vec(0, 0), 1: vec(400, 200)}
	e.predictTo(cfg, pairOf(teamSnap(9, chars, nil), teamSnap(10, chars, nil)), 12)
	c.SetMultiViewActivated(true)
	c.activateMultiView()

	c.UpdatePositions(cfg)
	si := c.SpecInfo()
	if !si.UsePosition || !si.Position.ApproxEqual(vec(200, 100)) {
		t.Fatalf("spectator info = %+v, want center (200,100)", si)
	}
	if z := c.MultiView().Zoom; z != 1 {
		t.Fatalf("zoom = %v, want 1 for a small spread", z)
	}
}

func TestMultiViewZoomIsClamped(t *testing.T) {
	e := newTestEnv()
	c := e.client
	cfg := DefaultConfig()
	cfg.Predict = false
	cfg.MaxMultiViewZoom = 2
	chars := map[int]mgl64.Vec2{0: vec(0, 0), 1: vec(100000, 0)}
	e.predictTo(cfg, pairOf(teamSnap(9, chars, nil), teamSnap(10, chars, nil)), 12)
	c.SetMultiViewActivated(true)
	c.activateMultiView()

	c.UpdatePositions(cfg)
	if z := c.MultiView().Zoom; z != 2 {
		t.Fatalf("zoom = %v, want clamp to 2", z)
	}
}

func TestMultiViewSmoothsCenter(t *testing.T) {
	e := newTestEnv()
	c := e.client
	cfg := DefaultConfig()
	cfg.Predict = false
	cfg.MultiViewSmoothing = 0.5
	first := map[int]mgl64.Vec2{0: vec(0, 0), 1: vec(100, 0)}
	e.predictTo(cfg, pairOf(teamSnap(9, first, nil), teamSnap(10, first, nil)), 12)
	c.SetMultiViewActivated(true)
	c.activateMultiView()
	c.UpdatePositions(cfg)

	second := map[int]mgl64.Vec2{0: vec(100, 0), 1: vec(200, 0)}
	e.predictTo(cfg, pairOf(teamSnap(10, second, nil), teamSnap(11, second, nil)), 13)
	c.UpdatePositions(cfg)

	// 目标中心 150，上一次 50，平滑系数 0.5
	if got := c.SpecInfo().Position; !got.ApproxEqual(vec(100, 0)) {
		t.Fatalf("center = %v, want (100,0)", got)
	}
}

func TestDeactivatingMultiViewResets(t *testing.T) {
	e := newTestEnv()
	c := e.client
	chars := map[int]mgl64.Vec2{0: vec(0, 0)}
	e.predictTo(DefaultConfig(), pairOf(teamSnap(9, chars, nil), teamSnap(10, chars, nil)), 12)
	c.SetMultiViewActivated(true)
	c.activateMultiView()
	c.multiView.PersonalZoom = 0.5

	c.SetMultiViewActivated(false)
	c.UpdatePositions(DefaultConfig())
	mv := c.MultiView()
	if mv.IsInit || len(mv.Tracked) != 0 {
		t.Fatalf("multi view not reset: %+v", mv)
	}
	if mv.PersonalZoom != 0.5 {
		t.Fatalf("personal zoom lost on reset")
	}

	c.ResetMultiView()
	if c.MultiView().IsInit {
		t.Fatalf("reset is not idempotent")
	}
}

func TestSpectatorCursorAverages(t *testing.T) {
	e := newTestEnv()
	c := e.client
	prev := spectating(snap(9, nil), 2, 0, 0)
	cur := spectating(snap(10, nil), 2, 0, 0)
	cur.Characters[2] = CharacterState{X: 10, Y: 0, TargetX: 4, TargetY: 0}
	e.predictTo(DefaultConfig(), pairOf(prev, cur), 12)

	c.UpdateSpectatorCursor()
	cursor := c.Cursor()
	if cursor.OwnerID != 2 || !cursor.Valid || !cursor.Position.ApproxEqual(vec(14, 0)) {
		t.Fatalf("cursor = %+v", cursor)
	}

	next := spectating(snap(11, nil), 2, 0, 0)
	next.Characters[2] = CharacterState{X: 10, Y: 0, TargetX: 8, TargetY: 0}
	e.predictTo(DefaultConfig(), pairOf(cur, next), 13)
	c.UpdateSpectatorCursor()
	if got := c.Cursor().Position; !got.ApproxEqual(vec(16, 0)) {
		t.Fatalf("cursor = %v, want (16,0)", got)
	}

	c.SetMultiViewActivated(true)
	c.UpdateSpectatorCursor()
	if c.Cursor().OwnerID != -1 {
		t.Fatalf("cursor should be dropped in multi view")
	}
}
