package client

// SlotState 每个控制槽位的同步状态
type SlotState int

const (
	SlotUnset      SlotState = iota // 重置后尚未产生预测 Tick
	SlotPredicting                  // 已开始预测，身份尚未确认
	SlotConfirmed                   // 服务端身份与配置一致
	SlotResyncing                   // 已重发身份，冷却中
)

func (s SlotState) String() string {
	switch s {
	case SlotUnset:
		return "unset"
	case SlotPredicting:
		return "predicting"
	case SlotConfirmed:
		return "confirmed"
	case SlotResyncing:
		return "resyncing"
	}
	return "unknown"
}

// checkConfirmed 倒计时的“已确认，跳过检查”哨兵值
const checkConfirmed = -1

// Slot 单个控制槽位的双时钟状态与身份复核倒计时
type Slot struct {
	state                SlotState
	lastNewPredictedTick int
	checkInfo            int
}

func (s *Slot) Reset() {
	s.state = SlotUnset
	s.lastNewPredictedTick = TickUnset
	s.checkInfo = checkConfirmed
}

func (s *Slot) State() SlotState          { return s.state }
func (s *Slot) LastNewPredictedTick() int { return s.lastNewPredictedTick }
func (s *Slot) CheckCountdown() int       { return s.checkInfo }

// OnPredictedTick 预测推进到新的 Tick；返回是否为新 Tick
func (s *Slot) OnPredictedTick(tick int) bool {
	if tick <= s.lastNewPredictedTick {
		return false
	}
	s.lastNewPredictedTick = tick
	if s.state == SlotUnset {
		s.state = SlotPredicting
	}
	return true
}

// Arm 发送身份后进入冷却
func (s *Slot) Arm(cooldown int) {
	s.checkInfo = cooldown
	if s.state != SlotUnset {
		s.state = SlotResyncing
	}
}

// RequestCheck 下一个 Tick 边界立即复核
func (s *Slot) RequestCheck() { s.checkInfo = 0 }

// Confirm 身份一致
func (s *Slot) Confirm() {
	s.checkInfo = checkConfirmed
	s.state = SlotConfirmed
}

// Due 倒计时到 0，需要复核
func (s *Slot) Due() bool { return s.checkInfo == 0 }

// Elapse 冷却倒计时减去经过的 Tick 数，不会因递减变为负数
func (s *Slot) Elapse(ticks int) {
	if s.checkInfo <= 0 || ticks <= 0 {
		return
	}
	s.checkInfo -= min(ticks, s.checkInfo)
}
