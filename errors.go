package bingo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	mrand "math/rand/v2"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem             ErrorCode = "BINGO_1000"
	ErrCodeRandomSource       ErrorCode = "BINGO_1001"
	ErrCodeConfigInvalid      ErrorCode = "BINGO_1002"
	ErrCodeCircuitBreakerOpen ErrorCode = "BINGO_1003"

	// 业务级错误 (2000-2999)
	ErrCodeInvalidParameters   ErrorCode = "BINGO_2000"
	ErrCodeInvalidRange        ErrorCode = "BINGO_2001"
	ErrCodeInvalidCount        ErrorCode = "BINGO_2002"
	ErrCodeNumberOutOfRange    ErrorCode = "BINGO_2003"
	ErrCodeSamplingStalled     ErrorCode = "BINGO_2004"
	ErrCodeInvalidStrategy     ErrorCode = "BINGO_2005"
	ErrCodeInvalidRandomSource ErrorCode = "BINGO_2006"
	ErrCodeInvalidLanguage     ErrorCode = "BINGO_2007"
	ErrCodeInvalidColorMode    ErrorCode = "BINGO_2008"

	// 交互错误 (3000-3999)
	ErrCodeUnknownCommand ErrorCode = "BINGO_3000"
	ErrCodeInputClosed    ErrorCode = "BINGO_3001"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
	SeverityInfo     ErrorSeverity = "info"
)

// BingoError 增强的错误类型
type BingoError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    string         `json:"details,omitempty"`
	Severity   ErrorSeverity  `json:"severity"`
	Timestamp  time.Time      `json:"timestamp"`
	Operation  string         `json:"operation,omitempty"`
	StackTrace string         `json:"stack_trace,omitempty"`
	Cause      error          `json:"-"`
	Retryable  bool           `json:"retryable"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Error 实现 error 接口
func (e *BingoError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *BingoError) Unwrap() error {
	return e.Cause
}

// Is 实现 errors.Is 接口
func (e *BingoError) Is(target error) bool {
	if t, ok := target.(*BingoError); ok {
		return e.Code == t.Code
	}
	return false
}

// clone returns a copy so the predefined errors below stay untouched
func (e *BingoError) clone() *BingoError {
	c := *e
	c.Metadata = maps.Clone(e.Metadata)
	return &c
}

// WithCause 添加原因错误
func (e *BingoError) WithCause(cause error) *BingoError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails 添加详细信息
func (e *BingoError) WithDetails(details string) *BingoError {
	c := e.clone()
	c.Details = details
	return c
}

// WithOperation 添加操作信息
func (e *BingoError) WithOperation(operation string) *BingoError {
	c := e.clone()
	c.Operation = operation
	return c
}

// WithMetadata 添加元数据
func (e *BingoError) WithMetadata(key string, value any) *BingoError {
	c := e.clone()
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	c.Metadata[key] = value
	return c
}

// WithStackTrace 添加堆栈跟踪
func (e *BingoError) WithStackTrace() *BingoError {
	c := e.clone()
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	c.StackTrace = string(buf[:n])
	return c
}

// NewError 创建新的错误
func NewError(code ErrorCode, message string) *BingoError {
	return &BingoError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
		Retryable: false,
	}
}

// NewRetryableError 创建可重试的错误
func NewRetryableError(code ErrorCode, message string) *BingoError {
	return &BingoError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
		Retryable: true,
	}
}

// NewCriticalError 创建严重错误
func NewCriticalError(code ErrorCode, message string) *BingoError {
	err := &BingoError{
		Code:      code,
		Message:   message,
		Severity:  SeverityCritical,
		Timestamp: time.Now(),
		Retryable: false,
	}
	return err.WithStackTrace()
}

// NewLowSeverityError 创建低严重程度错误, 用于用户输入类问题
func NewLowSeverityError(code ErrorCode, message string) *BingoError {
	return &BingoError{
		Code:      code,
		Message:   message,
		Severity:  SeverityLow,
		Timestamp: time.Now(),
		Retryable: false,
	}
}

// 预定义的错误实例
var (
	// 系统级错误
	ErrSystemError        = NewCriticalError(ErrCodeSystem, "system error occurred")
	ErrRandomSource       = NewRetryableError(ErrCodeRandomSource, "random source failed")
	ErrConfigInvalid      = NewCriticalError(ErrCodeConfigInvalid, "configuration is invalid")
	ErrCircuitBreakerOpen = NewRetryableError(ErrCodeCircuitBreakerOpen, "circuit breaker is open")

	// 业务级错误
	ErrInvalidParameters   = NewError(ErrCodeInvalidParameters, "invalid parameters provided")
	ErrInvalidRange        = NewError(ErrCodeInvalidRange, "invalid range: min must be less than or equal to max")
	ErrInvalidCount        = NewError(ErrCodeInvalidCount, "invalid count: must be between 1 and 75")
	ErrNumberOutOfRange    = NewError(ErrCodeNumberOutOfRange, "random source returned a number outside the pool")
	ErrSamplingStalled     = NewError(ErrCodeSamplingStalled, "random source kept returning drawn numbers")
	ErrInvalidStrategy     = NewError(ErrCodeInvalidStrategy, "invalid draw strategy: must be rejection or shuffle")
	ErrInvalidRandomSource = NewError(ErrCodeInvalidRandomSource, "invalid random source: must be secure or seeded")
	ErrInvalidLanguage     = NewError(ErrCodeInvalidLanguage, "invalid language: must be en or pt")
	ErrInvalidColorMode    = NewError(ErrCodeInvalidColorMode, "invalid color mode: must be auto, always or never")

	// 交互错误
	ErrUnknownCommand = NewLowSeverityError(ErrCodeUnknownCommand, "unknown command")
	ErrInputClosed    = NewLowSeverityError(ErrCodeInputClosed, "input closed")
)

// ErrorHandler 错误处理器接口
type ErrorHandler interface {
	HandleError(ctx context.Context, err error) error
	ShouldRetry(err error) bool
	GetRetryDelay(attempt int, err error) time.Duration
}

// DefaultErrorHandler 默认错误处理器
type DefaultErrorHandler struct {
	logger        Logger
	baseDelay     time.Duration
	maxDelay      time.Duration
	backoffFactor float64
}

// NewDefaultErrorHandler 创建默认错误处理器
func NewDefaultErrorHandler(logger Logger) *DefaultErrorHandler {
	if logger == nil {
		logger = NewSilentLogger()
	}
	return &DefaultErrorHandler{
		logger:        logger,
		baseDelay:     DefaultRetryBaseDelay,
		maxDelay:      DefaultRetryMaxDelay,
		backoffFactor: DefaultRetryBackoffFactor,
	}
}

// NewErrorHandlerWithBackoff creates a handler with custom retry delays
func NewErrorHandlerWithBackoff(logger Logger, baseDelay, maxDelay time.Duration, factor float64) *DefaultErrorHandler {
	h := NewDefaultErrorHandler(logger)
	h.baseDelay = baseDelay
	h.maxDelay = maxDelay
	if factor >= 1 {
		h.backoffFactor = factor
	}
	return h
}

// HandleError 处理错误
func (h *DefaultErrorHandler) HandleError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	// 转换为 BingoError
	var bingoErr *BingoError
	if !errors.As(err, &bingoErr) {
		bingoErr = ErrSystemError.WithCause(err).WithDetails(err.Error())
	}

	if ctx.Err() != nil {
		bingoErr = bingoErr.WithMetadata("context", ctx.Err().Error())
	}

	h.logError(bingoErr)
	return bingoErr
}

// ShouldRetry 判断是否应该重试
func (h *DefaultErrorHandler) ShouldRetry(err error) bool {
	var bingoErr *BingoError
	if errors.As(err, &bingoErr) && bingoErr.Retryable {
		return true
	}

	// 检查常见的可重试错误
	return IsRetryableError(err)
}

// GetRetryDelay 获取重试延迟
func (h *DefaultErrorHandler) GetRetryDelay(attempt int, err error) time.Duration {
	if attempt <= 0 {
		return h.baseDelay
	}

	// 指数退避算法
	delay := time.Duration(float64(h.baseDelay) * math.Pow(h.backoffFactor, float64(attempt-1)))

	// 添加抖动 (±25%)
	jitter := time.Duration(float64(delay) * 0.25 * (2*mrand.Float64() - 1))
	delay += jitter

	// 限制最大延迟
	if delay > h.maxDelay {
		delay = h.maxDelay
	}

	return delay
}

// logError 记录错误日志
func (h *DefaultErrorHandler) logError(err *BingoError) {
	switch err.Severity {
	case SeverityCritical:
		h.logger.Error("Critical error occurred: %s", err.Error())
	case SeverityHigh:
		h.logger.Error("High severity error: %s", err.Error())
	case SeverityMedium:
		h.logger.Error("Medium severity error: %s", err.Error())
	case SeverityLow:
		h.logger.Info("Low severity error: %s", err.Error())
	case SeverityInfo:
		h.logger.Info("Info level error: %s", err.Error())
	default:
		h.logger.Error("Unknown severity error: %s", err.Error())
	}

	if err.Operation != "" {
		h.logger.Debug("error %s raised by operation %s", err.Code, err.Operation)
	}
}

// IsRetryableError 检查是否为可重试错误 (熵源暂时不可用等)
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"resource temporarily unavailable",
		"interrupted system call",
		"temporary failure",
		"timeout",
		"timed out",
		"context deadline exceeded",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// ErrorRecovery 错误恢复策略
type ErrorRecovery struct {
	handler    ErrorHandler
	maxRetries int
	logger     Logger
}

// NewErrorRecovery 创建错误恢复策略
func NewErrorRecovery(handler ErrorHandler, maxRetries int, logger Logger) *ErrorRecovery {
	if logger == nil {
		logger = NewSilentLogger()
	}
	if handler == nil {
		handler = NewDefaultErrorHandler(logger)
	}
	return &ErrorRecovery{
		handler:    handler,
		maxRetries: max(maxRetries, 0),
		logger:     logger,
	}
}

// ExecuteWithRetry 执行带重试的操作
//
// Non-retryable errors are returned after the first attempt, already passed
// through the handler. Only safe for operations that change nothing on failure.
func (r *ErrorRecovery) ExecuteWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		// 检查上下文是否已取消
		select {
		case <-ctx.Done():
			return NewError(ErrCodeSystem, "operation cancelled").WithCause(ctx.Err())
		default:
		}

		// 执行操作
		err := operation()
		if err == nil {
			if attempt > 0 {
				r.logger.Info("Operation succeeded after %d retries", attempt)
			}
			return nil
		}

		// 处理错误
		lastErr = r.handler.HandleError(ctx, err)

		// 检查是否应该重试
		if !r.handler.ShouldRetry(lastErr) {
			r.logger.Debug("Error is not retryable: %v", lastErr)
			return lastErr
		}

		// 如果不是最后一次尝试，等待重试
		if attempt < r.maxRetries {
			delay := r.handler.GetRetryDelay(attempt+1, lastErr)
			r.logger.Debug("Retrying operation in %v (attempt %d/%d)", delay, attempt+1, r.maxRetries)

			select {
			case <-ctx.Done():
				return NewError(ErrCodeSystem, "operation cancelled during retry").WithCause(ctx.Err())
			case <-time.After(delay):
				// 继续重试
			}
		}
	}

	return NewError(ErrCodeSystem, fmt.Sprintf("operation failed after %d attempts", r.maxRetries+1)).
		WithCause(lastErr).
		WithDetails(lastErr.Error())
}
