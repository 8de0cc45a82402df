package bingo

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// DrawSession owns the pool of undrawn numbers for one game of bingo.
//
// Numbers are drawn without replacement from {1, ..., UpperBound}. Once every
// number has been drawn the session is exhausted, and stays so until Reset.
// A DrawSession is not safe for concurrent use; it is driven by a single UI loop.
type DrawSession struct {
	upperBound int
	drawn      map[int]struct{}
	history    []int
	lastDrawn  int // 0 means none

	strategy  string
	generator RandomGenerator
	pool      []int // remaining numbers in draw order, shuffle strategy only

	logger  Logger
	monitor *SessionMonitor
}

// NewDrawSession creates a session using crypto/rand and rejection sampling
func NewDrawSession() *DrawSession {
	return newDrawSession(NewSecureRandomGenerator(), StrategyRejection, &DefaultLogger{})
}

// NewDrawSessionWithGenerator creates a session with a custom random source and strategy
func NewDrawSessionWithGenerator(generator RandomGenerator, strategy string, logger Logger) (*DrawSession, error) {
	if generator == nil {
		return nil, ErrInvalidParameters.WithDetails("nil random generator")
	}
	if strategy != StrategyRejection && strategy != StrategyShuffle {
		return nil, ErrInvalidStrategy.WithDetails(fmt.Sprintf("got %q", strategy))
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}
	return newDrawSession(generator, strategy, logger), nil
}

// NewDrawSessionFromConfig creates a session from the game and circuit breaker sections of cfg
func NewDrawSessionFromConfig(cfg *Config, logger Logger) (*DrawSession, error) {
	if cfg == nil {
		return nil, ErrConfigInvalid.WithDetails("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	generator, err := NewRandomGeneratorFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewDrawSessionWithGenerator(generator, cfg.Game.Strategy, logger)
}

func newDrawSession(generator RandomGenerator, strategy string, logger Logger) *DrawSession {
	return &DrawSession{
		upperBound: UpperBound,
		drawn:      make(map[int]struct{}, UpperBound),
		history:    make([]int, 0, UpperBound),
		strategy:   strategy,
		generator:  generator,
		logger:     logger,
		monitor:    NewSessionMonitor(),
	}
}

// SetLogger replaces the session logger
func (s *DrawSession) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Monitor returns the session's metrics collector
func (s *DrawSession) Monitor() *SessionMonitor { return s.monitor }

// Generator returns the random source the session draws from
func (s *DrawSession) Generator() RandomGenerator { return s.generator }

// Strategy returns the draw strategy name
func (s *DrawSession) Strategy() string { return s.strategy }

// Draw picks a number that has not been drawn yet.
//
// When the pool is exhausted it returns a DrawExhausted result and leaves the
// session untouched. A non-nil error means the random source failed; the
// result is DrawFailed and the session is untouched in that case too.
func (s *DrawSession) Draw() (DrawResult, error) {
	start := time.Now()

	if s.IsExhausted() {
		s.monitor.RecordDraw(DrawExhausted, 0, time.Since(start))
		s.logger.Debug("Draw called on exhausted pool: count=%d", len(s.drawn))
		return DrawResult{Status: DrawExhausted, Count: len(s.drawn)}, nil
	}

	var (
		n          int
		rejections int
		err        error
	)
	switch s.strategy {
	case StrategyShuffle:
		n, err = s.popShuffled()
	default:
		n, rejections, err = s.sampleUnused()
	}
	if err != nil {
		s.monitor.RecordFailure(rejections, time.Since(start))
		s.logger.Error("Draw failed after %d rejected samples: %v", rejections, err)
		return DrawResult{
			Status:    DrawFailed,
			Count:     len(s.drawn),
			Remaining: s.upperBound - len(s.drawn),
		}, err
	}

	s.drawn[n] = struct{}{}
	s.history = append(s.history, n)
	s.lastDrawn = n

	s.monitor.RecordDraw(DrawSuccess, rejections, time.Since(start))
	s.logger.Debug("Drew %s: count=%d, rejections=%d", CallLabel(n), len(s.drawn), rejections)

	if s.IsExhausted() {
		s.logger.Info("All %d numbers have been drawn", s.upperBound)
	}

	return DrawResult{
		Status:    DrawSuccess,
		Number:    n,
		Count:     len(s.drawn),
		Remaining: s.upperBound - len(s.drawn),
	}, nil
}

// sampleUnused draws uniformly from the whole pool until it hits an unused number
func (s *DrawSession) sampleUnused() (n, rejections int, err error) {
	for rejections < MaxSampleAttempts {
		n, err = s.generator.GenerateInRange(LowerBound, s.upperBound)
		if err != nil {
			return 0, rejections, err
		}
		if !InPool(n) {
			return 0, rejections, ErrNumberOutOfRange.WithDetails(fmt.Sprintf("got %d", n))
		}
		if _, seen := s.drawn[n]; !seen {
			return n, rejections, nil
		}
		rejections++
	}
	return 0, rejections, ErrSamplingStalled.WithDetails(fmt.Sprintf("%d consecutive rejections", rejections))
}

// popShuffled pops the next number from the shuffled pool, shuffling it first if needed
func (s *DrawSession) popShuffled() (int, error) {
	if s.pool == nil {
		pool, err := s.shuffledRemaining()
		if err != nil {
			return 0, err
		}
		s.pool = pool
	}

	last := len(s.pool) - 1
	n := s.pool[last]
	s.pool = s.pool[:last]
	return n, nil
}

// shuffledRemaining returns the undrawn numbers in Fisher-Yates order
func (s *DrawSession) shuffledRemaining() ([]int, error) {
	pool := make([]int, 0, s.upperBound-len(s.drawn))
	for n := LowerBound; n <= s.upperBound; n++ {
		if _, seen := s.drawn[n]; !seen {
			pool = append(pool, n)
		}
	}

	for i := len(pool) - 1; i >= 1; i-- {
		j, err := s.generator.GenerateInRange(0, i)
		if err != nil {
			return nil, err
		}
		if j < 0 || j > i {
			return nil, ErrNumberOutOfRange.WithDetails(fmt.Sprintf("got index %d for [0, %d]", j, i))
		}
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool, nil
}

// DrawMultiple draws up to count numbers, calling progress after each one.
//
// Running out of numbers is not an error: the result is marked Exhausted and,
// if at least one number was drawn, PartialSuccess. A random source failure
// stops the run and is returned together with what was drawn before it.
func (s *DrawSession) DrawMultiple(count int, progress ProgressCallback) (*MultiDrawResult, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}

	result := &MultiDrawResult{
		Results:        make([]int, 0, count),
		TotalRequested: count,
	}

	for i := 0; i < count; i++ {
		r, err := s.Draw()
		if err != nil {
			result.PartialSuccess = result.Completed > 0
			return result, err
		}
		if r.IsExhausted() {
			result.Exhausted = true
			break
		}

		result.Results = append(result.Results, r.Number)
		result.Completed++
		if progress != nil {
			progress(result.Completed, count, r)
		}
	}

	result.PartialSuccess = result.Completed > 0 && result.Completed < count
	if result.Completed == count && s.IsExhausted() {
		result.Exhausted = true
	}
	return result, nil
}

// Reset clears all drawn numbers. Resetting a fresh session changes nothing observable.
func (s *DrawSession) Reset() {
	cleared := len(s.drawn)

	clear(s.drawn)
	s.history = s.history[:0]
	s.lastDrawn = 0
	s.pool = nil

	s.monitor.RecordReset()
	s.logger.Info("Session reset: %d numbers cleared", cleared)
}

// IsExhausted reports whether every number in the pool has been drawn
func (s *DrawSession) IsExhausted() bool { return len(s.drawn) == s.upperBound }

// LastDrawn returns the most recently drawn number, if any
func (s *DrawSession) LastDrawn() (int, bool) { return s.lastDrawn, s.lastDrawn != 0 }

// Count returns how many numbers have been drawn
func (s *DrawSession) Count() int { return len(s.drawn) }

// Remaining returns how many numbers are left in the pool
func (s *DrawSession) Remaining() int { return s.upperBound - len(s.drawn) }

// UpperBound returns the highest number in the pool
func (s *DrawSession) UpperBound() int { return s.upperBound }

// Contains reports whether n has been drawn
func (s *DrawSession) Contains(n int) bool {
	_, ok := s.drawn[n]
	return ok
}

// Drawn returns the drawn numbers in ascending order
func (s *DrawSession) Drawn() []int {
	return slices.Sorted(maps.Keys(s.drawn))
}

// History returns the drawn numbers in the order they were drawn
func (s *DrawSession) History() []int {
	return slices.Clone(s.history)
}

// SessionSnapshot is a read-only view of a session for renderers
type SessionSnapshot struct {
	UpperBound int   `json:"upper_bound"`
	Drawn      []int `json:"drawn"`      // ascending
	History    []int `json:"history"`    // draw order
	LastDrawn  int   `json:"last_drawn"` // 0 when nothing has been drawn
	Remaining  int   `json:"remaining"`
	Exhausted  bool  `json:"exhausted"`
}

// Snapshot copies the current state
func (s *DrawSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		UpperBound: s.upperBound,
		Drawn:      s.Drawn(),
		History:    s.History(),
		LastDrawn:  s.lastDrawn,
		Remaining:  s.Remaining(),
		Exhausted:  s.IsExhausted(),
	}
}

// IsDrawn reports whether n is in the snapshot's drawn set
func (ss SessionSnapshot) IsDrawn(n int) bool {
	_, found := slices.BinarySearch(ss.Drawn, n)
	return found
}

// HasLastDrawn reports whether anything has been drawn
func (ss SessionSnapshot) HasLastDrawn() bool { return ss.LastDrawn != 0 }
