package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen 熔断器打开时直接返回，不执行调用
var ErrOpen = errors.New("circuit breaker is open")

// State 表示熔断器状态
type State int

const (
	StateClosed   State = iota // 正常状态，允许请求通过
	StateOpen                  // 熔断状态，直接拒绝请求
	StateHalfOpen              // 尝试恢复，允许少量请求通过
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Config 熔断器配置
type Config struct {
	// 连续失败多少次后打开
	FailureThreshold int
	// 半开状态下成功多少次后关闭
	SuccessThreshold int
	// 打开状态持续多久后进入半开
	Timeout time.Duration
	// 半开状态下同时放行的最大请求数
	HalfOpenMaxRequests int
	// OnStateChange 在状态变化时调用（持有锁，不要在回调里调用熔断器）
	OnStateChange func(from, to State)
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

type CircuitBreaker struct {
	config Config
	now    func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

func New(config Config) *CircuitBreaker {
	return NewWithClock(config, time.Now)
}

// NewWithClock 用于测试时注入时间
func NewWithClock(config Config, now func() time.Time) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	return &CircuitBreaker{config: config, now: now}
}

// Execute 执行 fn，熔断打开时返回 ErrOpen
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}
	err := fn()
	cb.after(err)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.Timeout {
		cb.setState(StateHalfOpen)
	}

	switch cb.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if cb.inFlight >= cb.config.HalfOpenMaxRequests {
			return ErrOpen
		}
		cb.inFlight++
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.inFlight--
		if err != nil {
			cb.trip()
			return
		}
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
		}
		return
	}

	if err == nil {
		cb.failures = 0
		return
	}
	cb.failures++
	if cb.state == StateClosed && cb.failures >= cb.config.FailureThreshold {
		cb.trip()
	}
}

func (cb *CircuitBreaker) trip() {
	cb.openedAt = cb.now()
	cb.setState(StateOpen)
}

func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.inFlight = 0
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// State 获取当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset 重置为关闭状态
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
}
