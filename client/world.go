package client

import "github.com/go-gl/mathgl/mgl64"

// Character 预测世界中的角色
type Character struct {
	ClientID int
	Pos      mgl64.Vec2
	Vel      mgl64.Vec2
	TuneZone int
	Weapon   int
	Active   bool
}

// World 客户端本地维护的完整模拟世界，由物理步进器推进
type World struct {
	Tick         int
	Characters   map[int]*Character
	Switchers    []bool
	InfiniteAmmo bool
}

func NewWorld() *World {
	return &World{Tick: TickUnset, Characters: make(map[int]*Character)}
}

// Clear 清空所有实体（保留开关数量）
func (w *World) Clear() {
	w.Tick = TickUnset
	w.Characters = make(map[int]*Character)
	for i := range w.Switchers {
		w.Switchers[i] = false
	}
}

// InitSwitchers 按地图开关数量初始化开关状态
func (w *World) InitSwitchers(n int) {
	if n < 0 {
		n = 0
	}
	w.Switchers = make([]bool, n+1)
}

// CopyWorld 深拷贝 src 到 w
func (w *World) CopyWorld(src *World) {
	w.Tick = src.Tick
	w.InfiniteAmmo = src.InfiniteAmmo
	w.Characters = make(map[int]*Character, len(src.Characters))
	for id, c := range src.Characters {
		cc := *c
		w.Characters[id] = &cc
	}
	w.Switchers = append(w.Switchers[:0], src.Switchers...)
}

// Character 返回某个客户端的预测角色
func (w *World) Character(id int) (*Character, bool) {
	c, ok := w.Characters[id]
	if !ok || !c.Active {
		return nil, false
	}
	return c, true
}

// LoadSnapshot 用权威快照重建世界
func (w *World) LoadSnapshot(s *Snapshot) {
	w.Tick = s.Tick
	w.Characters = make(map[int]*Character, len(s.Characters))
	for id, cs := range s.Characters {
		w.Characters[id] = &Character{
			ClientID: id,
			Pos:      cs.Pos(),
			Vel:      cs.Vel(),
			TuneZone: cs.TuneZone,
			Weapon:   cs.Weapon,
			Active:   true,
		}
	}
}

// Stepper 物理步进器（外部黑盒）：按输入与调参推进一个 Tick
type Stepper interface {
	Step(w *World, inputs map[int]Input, tuning *TuningState)
}

// InputHistory 按 Tick 记录已发送的输入，供预测重放
type InputHistory struct {
	ticks  [NumDummies][]int
	inputs [NumDummies][]Input
	size   int
	head   [NumDummies]int
	count  [NumDummies]int
}

func NewInputHistory(size int) *InputHistory {
	h := &InputHistory{size: size}
	for i := 0; i < NumDummies; i++ {
		h.ticks[i] = make([]int, size)
		h.inputs[i] = make([]Input, size)
	}
	return h
}

// Add 记录 slot 在 tick 发出的输入
func (h *InputHistory) Add(slot, tick int, in Input) {
	i := h.head[slot]
	h.ticks[slot][i] = tick
	h.inputs[slot][i] = in
	h.head[slot] = (i + 1) % h.size
	if h.count[slot] < h.size {
		h.count[slot]++
	}
}

// Get 返回 tick 及之前最近一次发出的输入
func (h *InputHistory) Get(slot, tick int) (Input, bool) {
	best := TickUnset
	var found Input
	for k := 0; k < h.count[slot]; k++ {
		i := (h.head[slot] - 1 - k + h.size) % h.size
		t := h.ticks[slot][i]
		if t <= tick && t > best {
			best = t
			found = h.inputs[slot][i]
		}
	}
	return found, best != TickUnset
}

// Reset 清空历史
func (h *InputHistory) Reset() {
	h.head = [NumDummies]int{}
	h.count = [NumDummies]int{}
}
