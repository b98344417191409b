package repo

import (
	"context"
	"database/sql"

	"github.com/smartstake/smartstake-core/internal/analytics-service/aggregate"
)

// ReadRepo é o repositório somente-leitura usado pelo agregador.
// As agregações são calculadas em memória; o banco só fornece as
// apostas do usuário.
type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListBets(ctx context.Context, userID string) ([]aggregate.Bet, error) {
	const q = `
		SELECT sport, event, bookmaker, tipster, odds, stake, status, placed_at, result_at
		FROM bets
		WHERE user_id = $1
		ORDER BY placed_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]aggregate.Bet, 0)
	for rows.Next() {
		var b aggregate.Bet
		if err := rows.Scan(&b.Sport, &b.Event, &b.Bookmaker, &b.Tipster, &b.Odds, &b.Stake, &b.Status, &b.PlacedAt, &b.ResultAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
