package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// StateListener hears every state change of a named breaker. It runs after
// the breaker lock is released.
type StateListener func(name string, from, to CircuitState)

type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// OpenTimeout is how long an open breaker rejects calls before it lets
	// trial requests through.
	OpenTimeout time.Duration
	// HalfOpenMaxReq trial requests must succeed to close the breaker again.
	HalfOpenMaxReq int
	OnStateChange  StateListener
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

// CircuitBreaker guards one downstream dependency, such as a mirror sink.
// Only Execute and the Record methods move it; State never does.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig
	now  func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	trials   int
	passed   int
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: CircuitStateClosed,
	}
}

func (b *CircuitBreaker) Name() string { return b.name }

// Enabled reports whether the breaker was configured on. A disabled breaker
// still works when called directly; callers use this to skip it.
func (b *CircuitBreaker) Enabled() bool { return b.cfg.Enabled }

// Execute runs fn when the breaker admits it and records the outcome.
// countsAsFailure picks the errors that blame the dependency; nil blames
// every error.
func (b *CircuitBreaker) Execute(fn func() error, countsAsFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil && (countsAsFailure == nil || countsAsFailure(err)) {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	from := b.state
	if b.state == CircuitStateOpen && b.cooledLocked() {
		b.moveLocked(CircuitStateHalfOpen)
	}
	var err error
	switch {
	case b.state == CircuitStateOpen:
		err = ErrCircuitOpen
	case b.state == CircuitStateHalfOpen && b.trials >= b.cfg.HalfOpenMaxReq:
		err = ErrCircuitOpen
	case b.state == CircuitStateHalfOpen:
		b.trials++
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return err
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq {
			b.moveLocked(CircuitStateClosed)
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.moveLocked(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.moveLocked(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// State reports an open breaker whose timeout elapsed as half-open.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.cooledLocked() {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) cooledLocked() bool {
	return b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout
}

func (b *CircuitBreaker) moveLocked(next CircuitState) {
	b.state = next
	b.failures = 0
	b.trials = 0
	b.passed = 0
	b.openedAt = time.Time{}
	if next == CircuitStateOpen {
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) notify(from, to CircuitState) {
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, to)
	}
}
