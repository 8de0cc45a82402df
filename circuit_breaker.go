package bingo

import (
	"errors"
	"sync"

	"github.com/sony/gobreaker"
)

// BreakerRandomGenerator 带熔断器的随机数源
//
// Calls go to the primary generator through a circuit breaker. When the primary
// fails, or the breaker rejects the call, the fallback generator answers instead.
type BreakerRandomGenerator struct {
	primary  RandomGenerator
	fallback RandomGenerator

	mu      sync.RWMutex
	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewBreakerRandomGenerator 创建带熔断器的随机数源
func NewBreakerRandomGenerator(
	primary, fallback RandomGenerator, config *CircuitBreakerConfig, logger Logger,
) *BreakerRandomGenerator {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	g := &BreakerRandomGenerator{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		config:   config,
	}
	if config.Enabled {
		g.breaker = g.newBreaker()
	}
	return g
}

func (g *BreakerRandomGenerator) newBreaker() *gobreaker.CircuitBreaker {
	config := g.config
	logger := g.logger

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	})
}

// GenerateInRange returns a number in [min, max] from the primary source, or from the fallback
func (g *BreakerRandomGenerator) GenerateInRange(min, max int) (int, error) {
	if err := ValidateRange(min, max); err != nil {
		return 0, err
	}

	g.mu.RLock()
	breaker := g.breaker
	g.mu.RUnlock()

	if breaker == nil {
		return g.primary.GenerateInRange(min, max)
	}

	result, err := breaker.Execute(func() (any, error) {
		return g.primary.GenerateInRange(min, max)
	})
	if err == nil {
		return result.(int), nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		g.logger.Debug("Primary random source rejected: circuit breaker is open")
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		g.logger.Debug("Primary random source rejected: too many requests, circuit breaker is half-open")
	default:
		g.logger.Error("Primary random source failed, using fallback: %v", err)
	}

	if g.fallback == nil {
		return 0, ErrCircuitBreakerOpen.WithCause(err)
	}

	n, fbErr := g.fallback.GenerateInRange(min, max)
	if fbErr != nil {
		return 0, ErrRandomSource.WithCause(fbErr).WithDetails("fallback random source failed")
	}
	return n, nil
}

// State 获取熔断器状态
func (g *BreakerRandomGenerator) State() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.breaker == nil {
		return "disabled"
	}

	switch g.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Counts 获取熔断器统计信息
func (g *BreakerRandomGenerator) Counts() gobreaker.Counts {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.breaker == nil {
		return gobreaker.Counts{}
	}
	return g.breaker.Counts()
}

// Reset 重置熔断器 (gobreaker 没有 Reset 方法, 重新创建实例)
func (g *BreakerRandomGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.breaker == nil {
		return
	}
	g.breaker = g.newBreaker()
	g.logger.Info("Circuit breaker '%s' has been reset (recreated)", g.config.Name)
}

// Health reports the breaker state and counts; the console stats screen prints it
func (g *BreakerRandomGenerator) Health() map[string]any {
	result := map[string]any{
		"circuit_breaker_enabled": g.config.Enabled,
	}

	state := g.State()
	result["state"] = state
	if state == "disabled" {
		result["healthy"] = true
		return result
	}

	counts := g.Counts()
	result["requests"] = counts.Requests
	result["total_failures"] = counts.TotalFailures
	result["consecutive_failures"] = counts.ConsecutiveFailures
	result["healthy"] = state != "open"
	return result
}
