package bingo

import (
	"sync"
	"sync/atomic"
	"time"
)

// DrawMetrics 抽号统计
type DrawMetrics struct {
	// 抽号操作统计
	TotalDraws      int64 `json:"total_draws"`      // 总抽号次数
	SuccessfulDraws int64 `json:"successful_draws"` // 成功抽号次数
	ExhaustedDraws  int64 `json:"exhausted_draws"`  // 号码池已空时的抽号次数
	FailedDraws     int64 `json:"failed_draws"`     // 随机源失败次数

	// 拒绝采样统计
	Rejections int64 `json:"rejections"` // 抽到已出号码而重抽的次数

	Resets int64 `json:"resets"` // 重置次数

	// 性能统计
	AverageDrawTime int64 `json:"average_draw_time"` // 平均抽号时间(纳秒)
	TotalDrawTime   int64 `json:"total_draw_time"`   // 总抽号时间(纳秒)

	// 时间戳
	StartTime      int64 `json:"start_time"`       // 开始时间
	LastUpdateTime int64 `json:"last_update_time"` // 最后更新时间
}

// GetSuccessRate 获取成功率
func (dm *DrawMetrics) GetSuccessRate() float64 {
	total := atomic.LoadInt64(&dm.TotalDraws)
	if total == 0 {
		return 0.0
	}
	successful := atomic.LoadInt64(&dm.SuccessfulDraws)
	return float64(successful) / float64(total) * 100.0
}

// GetRejectionsPerDraw 获取每次成功抽号的平均重抽次数
func (dm *DrawMetrics) GetRejectionsPerDraw() float64 {
	successful := atomic.LoadInt64(&dm.SuccessfulDraws)
	if successful == 0 {
		return 0.0
	}
	return float64(atomic.LoadInt64(&dm.Rejections)) / float64(successful)
}

// GetAverageDrawTime 获取平均抽号时间
func (dm *DrawMetrics) GetAverageDrawTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&dm.AverageDrawTime))
}

// Reset 重置统计
func (dm *DrawMetrics) Reset() {
	atomic.StoreInt64(&dm.TotalDraws, 0)
	atomic.StoreInt64(&dm.SuccessfulDraws, 0)
	atomic.StoreInt64(&dm.ExhaustedDraws, 0)
	atomic.StoreInt64(&dm.FailedDraws, 0)
	atomic.StoreInt64(&dm.Rejections, 0)
	atomic.StoreInt64(&dm.Resets, 0)
	atomic.StoreInt64(&dm.AverageDrawTime, 0)
	atomic.StoreInt64(&dm.TotalDrawTime, 0)
	atomic.StoreInt64(&dm.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&dm.LastUpdateTime, time.Now().UnixNano())
}

// ================================================================================

// SessionMonitor 会话监控器
type SessionMonitor struct {
	metrics *DrawMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewSessionMonitor 创建新的会话监控器
func NewSessionMonitor() *SessionMonitor {
	sm := &SessionMonitor{
		metrics: &DrawMetrics{},
		enabled: true,
	}
	sm.metrics.Reset()
	return sm
}

// Enable 启用监控
func (sm *SessionMonitor) Enable() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.enabled = true
}

// Disable 禁用监控
func (sm *SessionMonitor) Disable() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.enabled = false
}

// IsEnabled 检查是否启用了监控
func (sm *SessionMonitor) IsEnabled() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.enabled
}

// RecordDraw 记录抽号操作
func (sm *SessionMonitor) RecordDraw(status DrawStatus, rejections int, duration time.Duration) {
	if !sm.IsEnabled() {
		return
	}

	atomic.AddInt64(&sm.metrics.TotalDraws, 1)
	atomic.AddInt64(&sm.metrics.TotalDrawTime, int64(duration))
	atomic.AddInt64(&sm.metrics.Rejections, int64(rejections))

	switch status {
	case DrawSuccess:
		atomic.AddInt64(&sm.metrics.SuccessfulDraws, 1)
	case DrawExhausted:
		atomic.AddInt64(&sm.metrics.ExhaustedDraws, 1)
	}

	sm.updateAverageDrawTime()

	atomic.StoreInt64(&sm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordFailure 记录随机源失败
func (sm *SessionMonitor) RecordFailure(rejections int, duration time.Duration) {
	if !sm.IsEnabled() {
		return
	}

	atomic.AddInt64(&sm.metrics.TotalDraws, 1)
	atomic.AddInt64(&sm.metrics.FailedDraws, 1)
	atomic.AddInt64(&sm.metrics.Rejections, int64(rejections))
	atomic.AddInt64(&sm.metrics.TotalDrawTime, int64(duration))
	sm.updateAverageDrawTime()

	atomic.StoreInt64(&sm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// updateAverageDrawTime 更新平均抽号时间
func (sm *SessionMonitor) updateAverageDrawTime() {
	totalDraws := atomic.LoadInt64(&sm.metrics.TotalDraws)
	if totalDraws == 0 {
		return
	}
	totalTime := atomic.LoadInt64(&sm.metrics.TotalDrawTime)
	atomic.StoreInt64(&sm.metrics.AverageDrawTime, totalTime/totalDraws)
}

// RecordReset 记录重置操作
func (sm *SessionMonitor) RecordReset() {
	if !sm.IsEnabled() {
		return
	}

	atomic.AddInt64(&sm.metrics.Resets, 1)
	atomic.StoreInt64(&sm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// GetMetrics 获取统计的副本
func (sm *SessionMonitor) GetMetrics() DrawMetrics {
	return DrawMetrics{
		TotalDraws:      atomic.LoadInt64(&sm.metrics.TotalDraws),
		SuccessfulDraws: atomic.LoadInt64(&sm.metrics.SuccessfulDraws),
		ExhaustedDraws:  atomic.LoadInt64(&sm.metrics.ExhaustedDraws),
		FailedDraws:     atomic.LoadInt64(&sm.metrics.FailedDraws),
		Rejections:      atomic.LoadInt64(&sm.metrics.Rejections),
		Resets:          atomic.LoadInt64(&sm.metrics.Resets),
		AverageDrawTime: atomic.LoadInt64(&sm.metrics.AverageDrawTime),
		TotalDrawTime:   atomic.LoadInt64(&sm.metrics.TotalDrawTime),
		StartTime:       atomic.LoadInt64(&sm.metrics.StartTime),
		LastUpdateTime:  atomic.LoadInt64(&sm.metrics.LastUpdateTime),
	}
}

// ResetMetrics 重置统计
func (sm *SessionMonitor) ResetMetrics() { sm.metrics.Reset() }
