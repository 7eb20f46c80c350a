package client

import "sync"

// Component 组合根中的子系统（HUD、摄像机、粒子等），核心只按顺序分发回调
type Component interface {
	OnInit()
	OnReset()
	OnRender()
	// OnInput 返回 true 表示事件已被消费，后续组件不再收到
	OnInput(ev InputEvent) bool
}

// MapLoader 可选能力：地图加载完成时回调
type MapLoader interface {
	OnMapLoad()
}

// InputEvent 输入层事件
type InputEvent struct {
	Key     string
	Pressed bool
}

// Components 有序的组件列表，按渲染顺序排列
type Components struct {
	mu  sync.RWMutex
	all []Component
}

// Register 追加组件（渲染顺序即注册顺序）
func (c *Components) Register(comps ...Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = append(c.all, comps...)
}

func (c *Components) list() []Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Component(nil), c.all...)
}

func (c *Components) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.all)
}

// InitAll 逆序初始化，保证被依赖的组件先就绪
func (c *Components) InitAll() {
	all := c.list()
	for i := len(all) - 1; i >= 0; i-- {
		all[i].OnInit()
	}
}

func (c *Components) ResetAll() {
	for _, comp := range c.list() {
		comp.OnReset()
	}
}

func (c *Components) MapLoadAll() {
	for _, comp := range c.list() {
		if ml, ok := comp.(MapLoader); ok {
			ml.OnMapLoad()
		}
	}
}

func (c *Components) RenderAll() {
	for _, comp := range c.list() {
		comp.OnRender()
	}
}

// DispatchInput 按顺序分发输入；按下事件被消费后停止，释放事件总是广播
func (c *Components) DispatchInput(ev InputEvent) {
	for _, comp := range c.list() {
		if comp.OnInput(ev) && ev.Pressed {
			return
		}
	}
}
