package client

import (
	"sync/atomic"
)

// ClientMetrics 记录客户端运行期的关键指标（用于监控与调试）
type ClientMetrics struct {
	FrameCount        int64 // 渲染帧数
	SnapshotsReceived int64 // 收到的快照数
	SnapshotsDropped  int64 // 解码失败丢弃的快照数
	InputsSent        int64 // 发出的非空输入帧
	InputsSkipped     int64 // 零字节输入帧（省带宽）
	PositionFreezes   int64 // 本地位置冻结次数
	IdentityResends   int64 // 身份重发次数
	TuningExpired     int64 // 调参期望超时丢弃数
	Resets            int64 // 生命周期重置次数
	TotalFrameNs      int64 // 帧累计耗时（纳秒）
}

func (m *ClientMetrics) IncSnapshots()        { atomic.AddInt64(&m.SnapshotsReceived, 1) }
func (m *ClientMetrics) IncSnapshotsDropped() { atomic.AddInt64(&m.SnapshotsDropped, 1) }
func (m *ClientMetrics) IncInputsSent()       { atomic.AddInt64(&m.InputsSent, 1) }
func (m *ClientMetrics) IncInputsSkipped()    { atomic.AddInt64(&m.InputsSkipped, 1) }
func (m *ClientMetrics) IncFreezes()          { atomic.AddInt64(&m.PositionFreezes, 1) }
func (m *ClientMetrics) IncIdentityResends()  { atomic.AddInt64(&m.IdentityResends, 1) }
func (m *ClientMetrics) IncTuningExpired()    { atomic.AddInt64(&m.TuningExpired, 1) }
func (m *ClientMetrics) IncResets()           { atomic.AddInt64(&m.Resets, 1) }
func (m *ClientMetrics) AddFrame(ns int64) {
	atomic.AddInt64(&m.FrameCount, 1)
	atomic.AddInt64(&m.TotalFrameNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *ClientMetrics) Snapshot() map[string]any {
	frames := atomic.LoadInt64(&m.FrameCount)
	total := atomic.LoadInt64(&m.TotalFrameNs)
	var avgMs float64
	if frames > 0 {
		avgMs = float64(total) / float64(frames) / 1e6
	}
	return map[string]any{
		"frame_count":        frames,
		"snapshots_received": atomic.LoadInt64(&m.SnapshotsReceived),
		"snapshots_dropped":  atomic.LoadInt64(&m.SnapshotsDropped),
		"inputs_sent":        atomic.LoadInt64(&m.InputsSent),
		"inputs_skipped":     atomic.LoadInt64(&m.InputsSkipped),
		"position_freezes":   atomic.LoadInt64(&m.PositionFreezes),
		"identity_resends":   atomic.LoadInt64(&m.IdentityResends),
		"tuning_expired":     atomic.LoadInt64(&m.TuningExpired),
		"resets":             atomic.LoadInt64(&m.Resets),
		"avg_frame_ms":       avgMs,
	}
}
