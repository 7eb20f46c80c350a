package client

// NumTuneZones 地图上可配置的调参区域数量（区域 0 为全局默认）
const NumTuneZones = 256

// TuningParams 单个调参区域的物理参数
type TuningParams struct {
	GroundControlSpeed float64 `msgpack:"ground_control_speed" json:"groundControlSpeed"`
	GroundControlAccel float64 `msgpack:"ground_control_accel" json:"groundControlAccel"`
	GroundFriction     float64 `msgpack:"ground_friction" json:"groundFriction"`
	GroundJumpImpulse  float64 `msgpack:"ground_jump_impulse" json:"groundJumpImpulse"`
	AirControlSpeed    float64 `msgpack:"air_control_speed" json:"airControlSpeed"`
	AirControlAccel    float64 `msgpack:"air_control_accel" json:"airControlAccel"`
	AirFriction        float64 `msgpack:"air_friction" json:"airFriction"`
	Gravity            float64 `msgpack:"gravity" json:"gravity"`
	VelrampStart       float64 `msgpack:"velramp_start" json:"velrampStart"`
}

// DefaultTuning 默认物理参数
func DefaultTuning() TuningParams {
	return TuningParams{
		GroundControlSpeed: 10.0,
		GroundControlAccel: 100.0 / TickSpeed,
		GroundFriction:     0.5,
		GroundJumpImpulse:  13.2,
		AirControlSpeed:    250.0 / TickSpeed,
		AirControlAccel:    1.5,
		AirFriction:        0.95,
		Gravity:            0.5,
		VelrampStart:       550,
	}
}

// TuningState 调参区域表与“等待确认”表
// 每个区域最多只有一个挂起的期望；超过窗口的期望被丢弃，可重新请求
type TuningState struct {
	params    [NumTuneZones]TuningParams
	received  [NumTuneZones]bool
	expecting map[int]int // zone -> since tick
	localZone [NumDummies]int

	window  int
	metrics *ClientMetrics
}

func NewTuningState(window int, metrics *ClientMetrics) *TuningState {
	t := &TuningState{window: window, metrics: metrics}
	t.Reset()
	return t
}

// Reset 恢复为“无挂起期望”
func (t *TuningState) Reset() {
	for i := range t.params {
		t.params[i] = DefaultTuning()
		t.received[i] = false
	}
	t.expecting = make(map[int]int)
	for i := range t.localZone {
		t.localZone[i] = -1
	}
}

// SetWindow 更新超时窗口（Tick）
func (t *TuningState) SetWindow(window int) { t.window = window }

func validZone(zone int) bool { return zone >= 0 && zone < NumTuneZones }

// Params 返回区域参数，非法区域回落到全局默认
func (t *TuningState) Params(zone int) TuningParams {
	if !validZone(zone) {
		return t.params[0]
	}
	return t.params[zone]
}

// Received 是否收到过该区域的服务端参数
func (t *TuningState) Received(zone int) bool {
	return validZone(zone) && t.received[zone]
}

// Expect 登记在 tick 时开始等待 zone 的参数；已有挂起期望时不重复登记
func (t *TuningState) Expect(zone, tick int) bool {
	if !validZone(zone) {
		return false
	}
	if _, ok := t.expecting[zone]; ok {
		return false
	}
	t.expecting[zone] = tick
	return true
}

// Pending 在 now 时刻该区域是否仍在等待确认
func (t *TuningState) Pending(zone, now int) bool {
	since, ok := t.expecting[zone]
	return ok && now <= since+t.window
}

// NumPending 当前挂起期望数量
func (t *TuningState) NumPending() int { return len(t.expecting) }

// Expire 丢弃超过窗口的期望
func (t *TuningState) Expire(now int) int {
	n := 0
	for zone, since := range t.expecting {
		if now > since+t.window {
			delete(t.expecting, zone)
			n++
			Log.Debugf("tuning expectation expired: zone=%d since=%d now=%d", zone, since, now)
			if t.metrics != nil {
				t.metrics.IncTuningExpired()
			}
		}
	}
	return n
}

// Apply 收到服务端参数：写入区域并清除对应期望
func (t *TuningState) Apply(zone int, p TuningParams) {
	if !validZone(zone) {
		Log.Debugf("ignore tuning for invalid zone %d", zone)
		return
	}
	t.params[zone] = p
	t.received[zone] = true
	delete(t.expecting, zone)
}

// LocalZone 某个槽位当前所在区域
func (t *TuningState) LocalZone(slot int) int { return t.localZone[slot] }

// UpdateLocalZone 槽位进入新区域时登记期望；尚未收到参数且期望已过期的区域会被重新请求
func (t *TuningState) UpdateLocalZone(slot, zone, tick int) {
	if !validZone(zone) {
		return
	}
	if t.localZone[slot] != zone {
		t.localZone[slot] = zone
		t.Expect(zone, tick)
		return
	}
	if !t.received[zone] {
		t.Expect(zone, tick)
	}
}
