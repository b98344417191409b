package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/pkg/contracts/events"
)

const (
	StatusPending = "PENDING"
	StatusWon     = "WON"
	StatusLost    = "LOST"
)

// PendingBet é a projeção de uma aposta pendente candidata à liquidação.
type PendingBet struct {
	ID        string
	UserID    string
	Sport     *string
	Event     *string
	Bookmaker *string
	AdmRef    *string
	PlacedAt  time.Time
}

// Outcome é a decisão da fonte de resultados para uma aposta.
// Unknown deixa a aposta PENDING para revisão manual — nunca forçamos palpite.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeWon
	OutcomeLost
)

// OutcomeSource decide o resultado de uma aposta a partir dos campos de
// evento/referência. Implementações reais devem consultar uma fonte
// autoritativa (bookmaker / API de resultados).
type OutcomeSource interface {
	Decide(ctx context.Context, bet PendingBet) (Outcome, error)
	Name() string
}

// Store é a superfície de persistência usada pelo resolver.
// SettleIfPending é condicional ao status ainda ser PENDING no momento do
// update: duas execuções concorrentes nunca liquidam a mesma aposta duas vezes.
type Store interface {
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]PendingBet, error)
	SettleIfPending(ctx context.Context, betID, status string, resultAt time.Time) (bool, error)
}

// Report resume uma execução do resolver.
type Report struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Resolver avança apostas PENDING com mais de MaxPendingAge para um estado
// terminal. Callbacks On* podem ser usadas para métricas por etapa.
type Resolver struct {
	Log           *zap.Logger
	Store         Store
	Source        OutcomeSource
	MaxPendingAge time.Duration

	Now func() time.Time // injetável em teste; default time.Now

	OnChecked     func()
	OnUpdated     func(status string)
	OnSkipped     func()
	OnError       func(stage string)
	OnAfterSettle func(ev events.BetSettled)
}

// Run executa uma passada de liquidação.
// Falha na listagem aborta a execução inteira; falha por aposta só registra
// e segue para as demais. Re-executar sem apostas novas atualiza zero.
func (r *Resolver) Run(ctx context.Context) (Report, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	// o corte é calculado uma única vez por execução
	cutoff := now().Add(-r.MaxPendingAge)

	candidates, err := r.Store.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		if r.OnError != nil {
			r.OnError("list")
		}
		return Report{}, fmt.Errorf("list pending bets: %w", err)
	}

	var rep Report
	for _, bet := range candidates {
		rep.Checked++
		if r.OnChecked != nil {
			r.OnChecked()
		}

		outcome, err := r.Source.Decide(ctx, bet)
		if err != nil {
			r.Log.Warn("outcome decide failed", zap.String("betId", bet.ID), zap.Error(err))
			if r.OnError != nil {
				r.OnError("decide")
			}
			rep.Skipped++
			continue
		}

		var status string
		switch outcome {
		case OutcomeWon:
			status = StatusWon
		case OutcomeLost:
			status = StatusLost
		default:
			// resultado ainda desconhecido: fica PENDING, entra no log pra revisão
			r.Log.Info("outcome still unknown, leaving pending",
				zap.String("betId", bet.ID),
				zap.Time("placedAt", bet.PlacedAt),
			)
			if r.OnSkipped != nil {
				r.OnSkipped()
			}
			rep.Skipped++
			continue
		}

		resultAt := now()
		ok, err := r.Store.SettleIfPending(ctx, bet.ID, status, resultAt)
		if err != nil {
			r.Log.Error("settle update failed", zap.String("betId", bet.ID), zap.Error(err))
			if r.OnError != nil {
				r.OnError("update")
			}
			continue
		}
		if !ok {
			// outra execução chegou primeiro; não conta como atualização
			r.Log.Debug("bet no longer pending, skipping", zap.String("betId", bet.ID))
			rep.Skipped++
			continue
		}

		rep.Updated++
		if r.OnUpdated != nil {
			r.OnUpdated(status)
		}

		r.Log.Info("bet settled",
			zap.String("betId", bet.ID),
			zap.String("status", status),
		)

		if r.OnAfterSettle != nil {
			ev := events.BetSettled{
				BetID:    bet.ID,
				UserID:   bet.UserID,
				Status:   status,
				Source:   r.Source.Name(),
				ResultAt: resultAt,
			}
			if bet.Sport != nil {
				ev.Sport = *bet.Sport
			}
			if bet.Event != nil {
				ev.Event = *bet.Event
			}
			r.OnAfterSettle(ev)
		}
	}

	return rep, nil
}
