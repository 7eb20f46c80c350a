package client

import "github.com/go-gl/mathgl/mgl64"

const (
	// MaxClients 服务器最大玩家数（也是队伍编号上限）
	MaxClients = 64
	// TickSpeed 服务器每秒 Tick 数
	TickSpeed = 50

	// TickUnset 表示 Tick 计数尚未设置（区别于任何合法 Tick）
	TickUnset = -1

	// SpecFreeview 自由视角；SpecFollow 回放中跟随录制者视角
	SpecFreeview = -1
	SpecFollow   = -2

	// FlagMissing 旗帜持有者未知
	FlagMissing = -4

	TeamRed  = 0
	TeamBlue = 1

	NumDummies = 2
)

// 游戏状态标志位（来自快照中的 GameInfo）
const (
	GameStateFlagGameOver  = 1 << 0
	GameStateFlagRoundOver = 1 << 1
	GameStateFlagPaused    = 1 << 2
)

// Mix 在 a、b 之间按 f 线性插值
func Mix(a, b mgl64.Vec2, f float64) mgl64.Vec2 {
	return a.Add(b.Sub(a).Mul(f))
}

// Identity 玩家身份信息（名称、战队、国家、皮肤与颜色）
type Identity struct {
	Name           string `msgpack:"name" json:"name"`
	Clan           string `msgpack:"clan" json:"clan"`
	Country        int    `msgpack:"country" json:"country"`
	Skin           string `msgpack:"skin" json:"skin"`
	UseCustomColor bool   `msgpack:"custom_color" json:"useCustomColor"`
	ColorBody      int    `msgpack:"color_body" json:"colorBody"`
	ColorFeet      int    `msgpack:"color_feet" json:"colorFeet"`
}

// CharacterState 快照中单个角色的权威状态
type CharacterState struct {
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
	VelX     float64 `msgpack:"vx"`
	VelY     float64 `msgpack:"vy"`
	TargetX  int     `msgpack:"tx"`
	TargetY  int     `msgpack:"ty"`
	TuneZone int     `msgpack:"zone"`
	Weapon   int     `msgpack:"weapon"`
}

func (c CharacterState) Pos() mgl64.Vec2 { return mgl64.Vec2{c.X, c.Y} }
func (c CharacterState) Vel() mgl64.Vec2 { return mgl64.Vec2{c.VelX, c.VelY} }

// GameInfo 全局游戏信息
type GameInfo struct {
	GameStateFlags int `msgpack:"flags"`
	RoundStartTick int `msgpack:"round_start"`
}

// SpectatorInfo 服务端下发的观战记录
type SpectatorInfo struct {
	SpectatorID int     `msgpack:"spec_id"`
	X           float64 `msgpack:"x"`
	Y           float64 `msgpack:"y"`
}

func (s SpectatorInfo) Pos() mgl64.Vec2 { return mgl64.Vec2{s.X, s.Y} }

// Snapshot 单个 Tick 的权威世界视图（只读）
type Snapshot struct {
	Tick           int                    `msgpack:"tick"`
	Characters     map[int]CharacterState `msgpack:"chars"`
	Clients        map[int]Identity       `msgpack:"clients"`
	Teams          map[int]int            `msgpack:"teams"`
	GameInfo       *GameInfo              `msgpack:"game_info,omitempty"`
	SpectatorInfo  *SpectatorInfo         `msgpack:"spec_info,omitempty"`
	LocalClientIDs [NumDummies]int        `msgpack:"local_ids"`
	Spectating     bool                   `msgpack:"spectating"`
	FlagCarrier    [2]int                 `msgpack:"flag_carrier"`
}

// Character 返回某个客户端的角色（不存在时 ok=false）
func (s *Snapshot) Character(id int) (CharacterState, bool) {
	if s == nil || id < 0 {
		return CharacterState{}, false
	}
	c, ok := s.Characters[id]
	return c, ok
}

// GameOver 当前快照是否处于游戏结束状态
func (s *Snapshot) GameOver() bool {
	return s != nil && s.GameInfo != nil && s.GameInfo.GameStateFlags&GameStateFlagGameOver != 0
}

// Team 返回客户端所在队伍，未知时为 0
func (s *Snapshot) Team(id int) int {
	if s == nil {
		return 0
	}
	return s.Teams[id]
}

// SnapPair 网络层整体替换的一对快照（上一帧、当前帧）
type SnapPair struct {
	Prev *Snapshot
	Cur  *Snapshot
}

// Valid 两个快照都存在时才可以用于插值
func (p *SnapPair) Valid() bool {
	return p != nil && p.Prev != nil && p.Cur != nil
}

// SpecInfo 观战派生状态，供摄像机读取
type SpecInfo struct {
	Active      bool
	SpectatorID int
	Position    mgl64.Vec2
	UsePosition bool
}

// ConnState 网络连接状态
type ConnState int

const (
	StateOffline ConnState = iota
	StateConnecting
	StateLoading
	StateOnline
	StateDemoPlayback
	StateQuitting
)

func (s ConnState) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateConnecting:
		return "connecting"
	case StateLoading:
		return "loading"
	case StateOnline:
		return "online"
	case StateDemoPlayback:
		return "demo"
	case StateQuitting:
		return "quitting"
	}
	return "unknown"
}
