package bingo

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession creates a seeded session with silent logging
func newTestSession(t *testing.T, strategy string, seed int64) *DrawSession {
	t.Helper()

	gen, err := NewSeededRandomGenerator(seed)
	require.NoError(t, err)

	session, err := NewDrawSessionWithGenerator(gen, strategy, NewSilentLogger())
	require.NoError(t, err)
	return session
}

// stubGenerator returns scripted values, then errors once it runs out
type stubGenerator struct {
	values []int
	err    error
	calls  int
}

func (g *stubGenerator) GenerateInRange(min, max int) (int, error) {
	g.calls++
	if g.err != nil {
		return 0, g.err
	}
	if len(g.values) == 0 {
		return 0, errors.New("stub generator exhausted")
	}
	v := g.values[0]
	g.values = g.values[1:]
	return v, nil
}

// constGenerator always returns the same value
type constGenerator int

func (g constGenerator) GenerateInRange(min, max int) (int, error) { return int(g), nil }

func TestDrawSession_FullPool(t *testing.T) {
	for _, strategy := range []string{StrategyRejection, StrategyShuffle} {
		t.Run(strategy, func(t *testing.T) {
			session := newTestSession(t, strategy, 42)

			seen := make(map[int]bool, UpperBound)
			for i := 0; i < UpperBound; i++ {
				result, err := session.Draw()
				require.NoError(t, err)
				require.True(t, result.Ok(), "draw %d should succeed", i+1)

				assert.GreaterOrEqual(t, result.Number, 1)
				assert.LessOrEqual(t, result.Number, UpperBound)
				assert.False(t, seen[result.Number], "number %d drawn twice", result.Number)
				seen[result.Number] = true

				assert.Equal(t, i+1, result.Count)
				assert.Equal(t, UpperBound-i-1, result.Remaining)
			}

			assert.Len(t, seen, UpperBound)
			assert.True(t, session.IsExhausted())

			want := make([]int, 0, UpperBound)
			for n := 1; n <= UpperBound; n++ {
				want = append(want, n)
			}
			assert.Equal(t, want, session.Drawn())
		})
	}
}

func TestDrawSession_ExhaustedDrawDoesNotMutate(t *testing.T) {
	for _, strategy := range []string{StrategyRejection, StrategyShuffle} {
		t.Run(strategy, func(t *testing.T) {
			session := newTestSession(t, strategy, 7)
			for i := 0; i < UpperBound; i++ {
				_, err := session.Draw()
				require.NoError(t, err)
			}

			before := session.Snapshot()

			result, err := session.Draw()
			require.NoError(t, err)
			assert.True(t, result.IsExhausted())
			assert.False(t, result.Ok())
			assert.Equal(t, 0, result.Number)
			assert.Equal(t, UpperBound, result.Count)
			assert.Empty(t, result.Label())

			assert.Equal(t, before, session.Snapshot())
		})
	}
}

func TestDrawSession_Reset(t *testing.T) {
	t.Run("after_ten_draws", func(t *testing.T) {
		session := newTestSession(t, StrategyRejection, 1)
		for i := 0; i < 10; i++ {
			_, err := session.Draw()
			require.NoError(t, err)
		}
		require.Equal(t, 10, session.Count())

		session.Reset()

		assert.False(t, session.IsExhausted())
		assert.Equal(t, 0, session.Count())
		assert.Equal(t, UpperBound, session.Remaining())
		assert.Empty(t, session.History())
		_, ok := session.LastDrawn()
		assert.False(t, ok)
	})

	t.Run("after_exhaustion_allows_full_game", func(t *testing.T) {
		for _, strategy := range []string{StrategyRejection, StrategyShuffle} {
			session := newTestSession(t, strategy, 99)
			for i := 0; i < UpperBound; i++ {
				_, err := session.Draw()
				require.NoError(t, err)
			}
			require.True(t, session.IsExhausted())

			session.Reset()
			require.False(t, session.IsExhausted())

			seen := make(map[int]bool)
			for i := 0; i < UpperBound; i++ {
				result, err := session.Draw()
				require.NoError(t, err)
				require.True(t, result.Ok())
				require.False(t, seen[result.Number])
				seen[result.Number] = true
			}
			assert.True(t, session.IsExhausted(), strategy)
		}
	})

	t.Run("fresh_session_is_noop", func(t *testing.T) {
		session := newTestSession(t, StrategyRejection, 5)
		before := session.Snapshot()

		session.Reset()

		assert.Equal(t, before, session.Snapshot())
		assert.False(t, session.IsExhausted())
	})

	t.Run("mid_shuffle", func(t *testing.T) {
		session := newTestSession(t, StrategyShuffle, 11)
		for i := 0; i < 30; i++ {
			_, err := session.Draw()
			require.NoError(t, err)
		}
		session.Reset()

		result, err := session.Draw()
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)
		assert.Equal(t, UpperBound-1, result.Remaining)
	})
}

func TestDrawSession_LastDrawn(t *testing.T) {
	session := newTestSession(t, StrategyRejection, 3)

	_, ok := session.LastDrawn()
	assert.False(t, ok, "nothing drawn yet")

	result, err := session.Draw()
	require.NoError(t, err)

	last, ok := session.LastDrawn()
	require.True(t, ok)
	assert.Equal(t, result.Number, last)
	assert.True(t, session.Contains(last))

	second, err := session.Draw()
	require.NoError(t, err)
	last, _ = session.LastDrawn()
	assert.Equal(t, second.Number, last)
	assert.Equal(t, []int{result.Number, second.Number}, session.History())
}

func TestDrawSession_SeededIsReproducible(t *testing.T) {
	for _, strategy := range []string{StrategyRejection, StrategyShuffle} {
		t.Run(strategy, func(t *testing.T) {
			a := newTestSession(t, strategy, 2024)
			b := newTestSession(t, strategy, 2024)

			for i := 0; i < 20; i++ {
				ra, err := a.Draw()
				require.NoError(t, err)
				rb, err := b.Draw()
				require.NoError(t, err)
				assert.Equal(t, ra.Number, rb.Number)
			}
		})
	}
}

func TestDrawSession_RejectionSampling(t *testing.T) {
	gen := &stubGenerator{values: []int{5, 5, 5, 9}}
	session, err := NewDrawSessionWithGenerator(gen, StrategyRejection, NewSilentLogger())
	require.NoError(t, err)

	first, err := session.Draw()
	require.NoError(t, err)
	assert.Equal(t, 5, first.Number)

	second, err := session.Draw()
	require.NoError(t, err)
	assert.Equal(t, 9, second.Number, "already drawn 5 must be skipped")

	m := session.Monitor().GetMetrics()
	assert.Equal(t, int64(2), m.Rejections)
	assert.Equal(t, int64(2), m.SuccessfulDraws)
}

func TestDrawSession_GeneratorFailures(t *testing.T) {
	tests := []struct {
		name      string
		generator RandomGenerator
		strategy  string
		wantErr   error
	}{
		{
			name:      "source_error",
			generator: &stubGenerator{err: errors.New("entropy unavailable")},
			strategy:  StrategyRejection,
			wantErr:   nil,
		},
		{
			name:      "out_of_range",
			generator: constGenerator(UpperBound + 1),
			strategy:  StrategyRejection,
			wantErr:   ErrNumberOutOfRange,
		},
		{
			name:      "shuffle_source_error",
			generator: &stubGenerator{err: errors.New("entropy unavailable")},
			strategy:  StrategyShuffle,
			wantErr:   nil,
		},
		{
			name:      "shuffle_bad_index",
			generator: constGenerator(-1),
			strategy:  StrategyShuffle,
			wantErr:   ErrNumberOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := NewDrawSessionWithGenerator(tt.generator, tt.strategy, NewSilentLogger())
			require.NoError(t, err)

			result, err := session.Draw()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			assert.False(t, result.Ok())
			assert.False(t, result.IsExhausted())
			assert.Equal(t, DrawFailed, result.Status)
			assert.Empty(t, result.Label())
			assert.Equal(t, UpperBound, result.Remaining)
			assert.Equal(t, 0, session.Count())
			_, ok := session.LastDrawn()
			assert.False(t, ok)
			assert.Equal(t, int64(1), session.Monitor().GetMetrics().FailedDraws)
		})
	}
}

func TestDrawSession_SamplingStalls(t *testing.T) {
	session, err := NewDrawSessionWithGenerator(constGenerator(1), StrategyRejection, NewSilentLogger())
	require.NoError(t, err)

	result, err := session.Draw()
	require.NoError(t, err)
	require.Equal(t, 1, result.Number)

	_, err = session.Draw()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSamplingStalled)
	assert.Equal(t, 1, session.Count())
	assert.Equal(t, []int{1}, session.History())
}

func TestDrawSession_DrawMultiple(t *testing.T) {
	t.Run("invalid_count", func(t *testing.T) {
		session := newTestSession(t, StrategyRejection, 1)
		for _, count := range []int{0, -3, UpperBound + 1} {
			result, err := session.DrawMultiple(count, nil)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidCount)
		}
	})

	t.Run("progress_callback", func(t *testing.T) {
		session := newTestSession(t, StrategyShuffle, 1)

		var calls []int
		result, err := session.DrawMultiple(5, func(completed, total int, current DrawResult) {
			assert.Equal(t, 5, total)
			assert.True(t, current.Ok())
			calls = append(calls, completed)
		})
		require.NoError(t, err)
		require.NoError(t, result.Validate())

		assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
		assert.True(t, result.IsComplete())
		assert.False(t, result.PartialSuccess)
		assert.False(t, result.Exhausted)
		assert.Equal(t, session.History(), result.Results)
		assert.InDelta(t, 100.0, result.SuccessRate(), 0.001)
	})

	t.Run("stops_at_exhaustion", func(t *testing.T) {
		session := newTestSession(t, StrategyRejection, 1)
		for i := 0; i < UpperBound-3; i++ {
			_, err := session.Draw()
			require.NoError(t, err)
		}

		result, err := session.DrawMultiple(10, nil)
		require.NoError(t, err)
		require.NoError(t, result.Validate())

		assert.Equal(t, 3, result.Completed)
		assert.True(t, result.PartialSuccess)
		assert.True(t, result.Exhausted)
		assert.False(t, result.IsComplete())
		assert.True(t, session.IsExhausted())
	})

	t.Run("already_exhausted", func(t *testing.T) {
		session := newTestSession(t, StrategyShuffle, 1)
		_, err := session.DrawMultiple(UpperBound, nil)
		require.NoError(t, err)

		result, err := session.DrawMultiple(1, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Completed)
		assert.False(t, result.PartialSuccess)
		assert.True(t, result.Exhausted)
	})

	t.Run("source_failure_keeps_drawn", func(t *testing.T) {
		gen := &stubGenerator{values: []int{10, 20}}
		session, err := NewDrawSessionWithGenerator(gen, StrategyRejection, NewSilentLogger())
		require.NoError(t, err)

		result, err := session.DrawMultiple(5, nil)
		require.Error(t, err)
		require.NotNil(t, result)
		assert.Equal(t, []int{10, 20}, result.Results)
		assert.True(t, result.PartialSuccess)
		assert.Equal(t, 2, session.Count())
	})
}

func TestDrawSession_Snapshot(t *testing.T) {
	session := newTestSession(t, StrategyRejection, 8)

	empty := session.Snapshot()
	assert.False(t, empty.HasLastDrawn())
	assert.Empty(t, empty.Drawn)
	assert.Equal(t, UpperBound, empty.UpperBound)
	assert.Equal(t, UpperBound, empty.Remaining)

	for i := 0; i < 6; i++ {
		_, err := session.Draw()
		require.NoError(t, err)
	}

	snap := session.Snapshot()
	assert.True(t, slices.IsSorted(snap.Drawn))
	assert.Len(t, snap.History, 6)
	assert.Equal(t, snap.History[5], snap.LastDrawn)
	for n := 1; n <= UpperBound; n++ {
		assert.Equal(t, session.Contains(n), snap.IsDrawn(n), "number %d", n)
	}

	// the snapshot is a copy
	snap.History[0] = -1
	assert.NotEqual(t, -1, session.History()[0])
}

func TestNewDrawSessionWithGenerator_Validation(t *testing.T) {
	_, err := NewDrawSessionWithGenerator(nil, StrategyRejection, nil)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewDrawSessionWithGenerator(NewSecureRandomGenerator(), "lottery", nil)
	assert.ErrorIs(t, err, ErrInvalidStrategy)

	session, err := NewDrawSessionWithGenerator(NewSecureRandomGenerator(), StrategyShuffle, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyShuffle, session.Strategy())
	assert.Equal(t, UpperBound, session.UpperBound())
}

func TestNewDrawSessionFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Game.Strategy = StrategyShuffle
	cfg.Game.RandomSource = RandomSourceSeeded
	cfg.Game.Seed = 77

	session, err := NewDrawSessionFromConfig(cfg, NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, StrategyShuffle, session.Strategy())
	assert.IsType(t, &BreakerRandomGenerator{}, session.Generator())

	cfg.CircuitBreaker.Enabled = false
	session, err = NewDrawSessionFromConfig(cfg, NewSilentLogger())
	require.NoError(t, err)
	seeded, ok := session.Generator().(*SeededRandomGenerator)
	require.True(t, ok)
	assert.Equal(t, int64(77), seeded.Seed())

	_, err = NewDrawSessionFromConfig(nil, nil)
	assert.ErrorIs(t, err, ErrConfigInvalid)

	cfg.Game.RandomSource = "dice"
	_, err = NewDrawSessionFromConfig(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidRandomSource)
}
