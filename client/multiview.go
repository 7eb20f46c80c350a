package client

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// 多视角镜头的基准可视范围
const (
	multiViewBaseWidth  = 1600.0
	multiViewBaseHeight = 900.0
)

// CursorSamples 观战光标平滑采样数
const CursorSamples = 4

// MultiView 多视角派生状态
type MultiView struct {
	IsInit       bool
	Team         int
	Tracked      []int
	Center       mgl64.Vec2
	Zoom         float64
	PersonalZoom float64
	hasCenter    bool
}

// CursorInfo 被观战玩家的光标
type CursorInfo struct {
	OwnerID    int
	Samples    [CursorSamples]mgl64.Vec2
	NumSamples int
	Position   mgl64.Vec2
	Valid      bool
}

// InitMultiView 跟踪 team 队伍中的所有角色；队伍号越界时回落到 0
// 没有匹配角色时返回 false，调用方需关闭多视角
func (c *GameClient) InitMultiView(team int) bool {
	if team > MaxClients || team < 0 {
		team = 0
	}
	c.multiView.Tracked = c.multiView.Tracked[:0]
	if c.snap.Valid() {
		for id := 0; id < MaxClients; id++ {
			if _, ok := c.snap.Cur.Character(id); !ok {
				continue
			}
			if c.snap.Cur.Team(id) == team {
				c.multiView.Tracked = append(c.multiView.Tracked, id)
			}
		}
	}
	if len(c.multiView.Tracked) == 0 {
		c.multiView.Tracked = nil
		return false
	}
	c.multiView.Team = team
	c.multiView.IsInit = true
	c.multiView.hasCenter = false
	return true
}

// ResetMultiView 清除跟踪状态（幂等）
func (c *GameClient) ResetMultiView() {
	personal := c.multiView.PersonalZoom
	c.multiView = MultiView{PersonalZoom: personal}
}

// trackedPos 优先使用预测位置，否则使用快照插值
func (c *GameClient) trackedPos(cfg Config, id int) (mgl64.Vec2, bool) {
	if cfg.Predict {
		if ch, ok := c.predicted.Character(id); ok {
			return ch.Pos, true
		}
	}
	n, okCur := c.snap.Cur.Character(id)
	if !okCur {
		return mgl64.Vec2{}, false
	}
	if p, okPrev := c.snap.Prev.Character(id); okPrev {
		return Mix(p.Pos(), n.Pos(), c.net.IntraGameTick(c.mux.Active())), true
	}
	return n.Pos(), true
}

// HandleMultiView 重新计算多视角的合成镜头目标
func (c *GameClient) HandleMultiView(cfg Config) {
	if !c.multiView.IsInit || !c.snap.Valid() {
		return
	}
	minP := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	maxP := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	alive := c.multiView.Tracked[:0]
	for _, id := range c.multiView.Tracked {
		pos, ok := c.trackedPos(cfg, id)
		if !ok {
			continue
		}
		alive = append(alive, id)
		minP = mgl64.Vec2{math.Min(minP.X(), pos.X()), math.Min(minP.Y(), pos.Y())}
		maxP = mgl64.Vec2{math.Max(maxP.X(), pos.X()), math.Max(maxP.Y(), pos.Y())}
	}
	c.multiView.Tracked = alive
	if len(alive) == 0 {
		// 所有人都离开了：保持上一次的位置
		return
	}

	target := Mix(minP, maxP, 0.5)
	if c.multiView.hasCenter {
		c.multiView.Center = Mix(target, c.multiView.Center, cfg.MultiViewSmoothing)
	} else {
		c.multiView.Center = target
		c.multiView.hasCenter = true
	}

	span := maxP.Sub(minP)
	zoom := math.Max(span.X()/multiViewBaseWidth, span.Y()/multiViewBaseHeight)
	maxZoom := cfg.MaxMultiViewZoom
	if maxZoom < 1 {
		maxZoom = 1
	}
	zoom = math.Min(math.Max(zoom, 1), maxZoom)
	c.multiView.Zoom = math.Max(zoom+c.multiView.PersonalZoom, 1)

	c.specInfo.Position = c.multiView.Center
	c.specInfo.UsePosition = true
}

// activateMultiView 多视角被打开且尚未初始化时，以观战目标所在队伍初始化
func (c *GameClient) activateMultiView() {
	if c.multiView.IsInit || !c.multiViewActivated {
		return
	}
	team := 0
	if c.specInfo.SpectatorID >= 0 && c.snap.Valid() {
		team = c.snap.Cur.Team(c.specInfo.SpectatorID)
	}
	if !c.InitMultiView(team) {
		Log.Debugf("multi view: no players found to spectate (team=%d)", team)
		c.ResetMultiView()
	}
}

// UpdateSpectatorCursor 跟踪被观战玩家的瞄准光标
func (c *GameClient) UpdateSpectatorCursor() {
	id := c.specInfo.SpectatorID
	if !c.specInfo.Active || c.multiViewActivated || id < 0 || !c.snap.Valid() {
		c.cursor = CursorInfo{OwnerID: -1}
		return
	}
	ch, ok := c.snap.Cur.Character(id)
	if !ok {
		c.cursor = CursorInfo{OwnerID: -1}
		return
	}
	if c.cursor.OwnerID != id {
		c.cursor = CursorInfo{OwnerID: id}
	}
	if !c.newTick && c.cursor.NumSamples > 0 {
		return
	}
	sample := ch.Pos().Add(mgl64.Vec2{float64(ch.TargetX), float64(ch.TargetY)})
	copy(c.cursor.Samples[1:], c.cursor.Samples[:CursorSamples-1])
	c.cursor.Samples[0] = sample
	if c.cursor.NumSamples < CursorSamples {
		c.cursor.NumSamples++
	}
	var sum mgl64.Vec2
	for i := 0; i < c.cursor.NumSamples; i++ {
		sum = sum.Add(c.cursor.Samples[i])
	}
	c.cursor.Position = sum.Mul(1 / float64(c.cursor.NumSamples))
	c.cursor.Valid = true
}
