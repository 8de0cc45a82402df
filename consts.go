package bingo

import "time"

const (
	// UpperBound is the highest ball number; the pool is {1, ..., UpperBound}
	UpperBound = 75

	// LowerBound is the lowest ball number
	LowerBound = 1

	// GridRows is the number of rows on the board, one per BINGO letter
	GridRows = 5

	// GridColumns is the number of cells in each board row
	GridColumns = UpperBound / GridRows

	// MaxSampleAttempts caps consecutive rejected samples in a single draw
	MaxSampleAttempts = UpperBound * 1000

	// MaxAutoDrawCount is the largest count accepted by DrawMultiple
	MaxAutoDrawCount = UpperBound
)

// Column letters, indexed by board row
const ColumnLetters = "BINGO"

const (
	StrategyRejection = "rejection"
	StrategyShuffle   = "shuffle"
)

const (
	RandomSourceSecure = "secure"
	RandomSourceSeeded = "seeded"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	LanguageEnglish    = "en"
	LanguagePortuguese = "pt"
)

const (
	DefaultStrategy     = StrategyRejection
	DefaultRandomSource = RandomSourceSecure
	DefaultLanguage     = LanguageEnglish
	DefaultColorMode    = ColorAuto
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "bingo-random-source"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	// DefaultRetryAttempts is how many times the console retries a failed draw
	DefaultRetryAttempts = 2

	// DefaultRetryBaseDelay is the delay before the first retry
	DefaultRetryBaseDelay = 50 * time.Millisecond

	// DefaultRetryMaxDelay caps the backoff
	DefaultRetryMaxDelay = time.Second

	// DefaultRetryBackoffFactor multiplies the delay after each attempt
	DefaultRetryBackoffFactor = 2.0
)
