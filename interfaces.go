package bingo

// ProgressCallback defines the callback function for multi-draw progress updates
type ProgressCallback func(completed, total int, current DrawResult)

// RandomGenerator is the source of uniformly distributed integers used by a DrawSession
type RandomGenerator interface {
	// GenerateInRange returns a random number within [min, max] (inclusive)
	GenerateInRange(min, max int) (int, error)
}

// Drawer defines the operations a presentation layer may invoke on a session
type Drawer interface {
	// Draw picks one number that has not been drawn yet, or reports exhaustion
	Draw() (DrawResult, error)

	// DrawMultiple draws up to count numbers, stopping early once the pool is exhausted
	DrawMultiple(count int, progress ProgressCallback) (*MultiDrawResult, error)

	// Reset clears every drawn number
	Reset()

	// IsExhausted reports whether every number in the pool has been drawn
	IsExhausted() bool

	// Snapshot returns a read-only copy of the session state
	Snapshot() SessionSnapshot
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}
