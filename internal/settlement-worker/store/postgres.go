package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/smartstake/smartstake-core/internal/settlement-worker/resolver"
)

// Postgres implementa a superfície de persistência do resolver sobre a
// tabela bets.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ListPendingOlderThan retorna as apostas PENDING colocadas antes do corte.
// A comparação é estrita: uma aposta exatamente no corte fica de fora, e o
// mesmo corte produz sempre a mesma seleção.
func (p *Postgres) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]resolver.PendingBet, error) {
	const q = `
		SELECT id, user_id, sport, event, bookmaker, adm_ref, placed_at
		FROM bets
		WHERE status = 'PENDING' AND placed_at < $1
		ORDER BY placed_at;
	`
	rows, err := p.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []resolver.PendingBet
	for rows.Next() {
		var b resolver.PendingBet
		if err := rows.Scan(&b.ID, &b.UserID, &b.Sport, &b.Event, &b.Bookmaker, &b.AdmRef, &b.PlacedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SettleIfPending grava o resultado somente se a aposta ainda estiver PENDING.
// Retorna false quando outra execução liquidou a aposta primeiro.
func (p *Postgres) SettleIfPending(ctx context.Context, betID, status string, resultAt time.Time) (bool, error) {
	const q = `
		UPDATE bets
		SET status = $1, result_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'PENDING';
	`
	res, err := p.db.ExecContext(ctx, q, status, resultAt, betID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
