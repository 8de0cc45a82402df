package bingo

import (
	"errors"
	"io"
	"testing"
)

// BenchmarkFullGame 完整一局 (75 次抽号) 性能基准测试
func BenchmarkFullGame(b *testing.B) {
	for _, strategy := range []string{StrategyRejection, StrategyShuffle} {
		b.Run(strategy, func(b *testing.B) {
			session, err := NewDrawSessionWithGenerator(NewSecureRandomGenerator(), strategy, NewSilentLogger())
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for !session.IsExhausted() {
					if _, err := session.Draw(); err != nil {
						b.Fatal(err)
					}
				}
				session.Reset()
			}
		})
	}
}

// BenchmarkLastDraw 号码池只剩一个号码时的抽号, 拒绝采样最坏情况
func BenchmarkLastDraw(b *testing.B) {
	for _, strategy := range []string{StrategyRejection, StrategyShuffle} {
		b.Run(strategy, func(b *testing.B) {
			gen, err := NewSeededRandomGenerator(1)
			if err != nil {
				b.Fatal(err)
			}
			session, err := NewDrawSessionWithGenerator(gen, strategy, NewSilentLogger())
			if err != nil {
				b.Fatal(err)
			}

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				session.Reset()
				for session.Remaining() > 1 {
					if _, err := session.Draw(); err != nil {
						b.Fatal(err)
					}
				}
				b.StartTimer()

				if _, err := session.Draw(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkBreakerOverhead 熔断器包装的额外开销
func BenchmarkBreakerOverhead(b *testing.B) {
	primary, _ := NewSeededRandomGenerator(1)

	b.Run("plain", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = primary.GenerateInRange(LowerBound, UpperBound)
		}
	})

	b.Run("breaker_closed", func(b *testing.B) {
		g := NewBreakerRandomGenerator(primary, nil, DefaultCircuitBreakerConfig(), NewSilentLogger())
		for i := 0; i < b.N; i++ {
			_, _ = g.GenerateInRange(LowerBound, UpperBound)
		}
	})

	b.Run("breaker_open_fallback", func(b *testing.B) {
		failing := &stubGenerator{err: errors.New("down")}
		g := NewBreakerRandomGenerator(failing, primary, DefaultCircuitBreakerConfig(), NewSilentLogger())
		for i := 0; i < b.N; i++ {
			_, _ = g.GenerateInRange(LowerBound, UpperBound)
		}
	})
}

// BenchmarkRender 渲染整个面板
func BenchmarkRender(b *testing.B) {
	board := NewBoard(&DisplayConfig{Language: LanguageEnglish, Color: ColorAlways}, io.Discard)
	snap := SessionSnapshot{
		UpperBound: UpperBound,
		Drawn:      []int{3, 17, 33, 48, 70},
		History:    []int{33, 3, 70, 17, 48},
		LastDrawn:  48,
		Remaining:  UpperBound - 5,
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := board.Render(snap); err != nil {
			b.Fatal(err)
		}
	}
}
