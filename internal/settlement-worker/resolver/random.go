package resolver

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// RandomSource sorteia o resultado com taxa de vitória fixa.
// É o placeholder herdado do produto original enquanto não existe integração
// com uma fonte real de resultados; nunca devolve OutcomeUnknown.
type RandomSource struct {
	WinRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSource(winRate float64) *RandomSource {
	return &RandomSource{
		WinRate: winRate,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *RandomSource) Decide(_ context.Context, _ PendingBet) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng.Float64() < s.WinRate {
		return OutcomeWon, nil
	}
	return OutcomeLost, nil
}

func (s *RandomSource) Name() string { return "random-placeholder" }
