package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadySettled = errors.New("bet already settled")
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const betColumns = `id, user_id, bankroll_id, sport, event, bookmaker, tipster, adm_ref,
	odds, stake, confidence_score, status, image_url, placed_at, result_at, created_at, updated_at`

// CreatePending insere uma nova aposta com status PENDING.
// placed_at ausente recebe o relógio do servidor.
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	if b.PlacedAt.IsZero() {
		b.PlacedAt = time.Now()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, bankroll_id, sport, event, bookmaker, tipster, adm_ref,
			odds, stake, confidence_score, status, image_url, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'PENDING',$12,$13)`,
		id, b.UserID, b.BankrollID, b.Sport, b.Event, b.Bookmaker, b.Tipster, b.AdmRef,
		b.Odds, b.Stake, b.ConfidenceScore, b.ImageURL, b.PlacedAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetByID retorna uma aposta do próprio usuário
func (p *Postgres) GetByID(ctx context.Context, userID, betID string) (*Bet, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE id = $1 AND user_id = $2`, betID, userID)

	var b Bet
	err := row.Scan(&b.ID, &b.UserID, &b.BankrollID, &b.Sport, &b.Event, &b.Bookmaker,
		&b.Tipster, &b.AdmRef, &b.Odds, &b.Stake, &b.ConfidenceScore, &b.Status,
		&b.ImageURL, &b.PlacedAt, &b.ResultAt, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List retorna as apostas do usuário que satisfazem o filtro,
// das mais recentes para as mais antigas.
func (p *Postgres) List(ctx context.Context, userID string, f Filter) ([]Bet, error) {
	where, args := buildWhere(userID, f)
	q := `SELECT ` + betColumns + ` FROM bets WHERE ` + where + ` ORDER BY placed_at DESC`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Bet, 0)
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.BankrollID, &b.Sport, &b.Event, &b.Bookmaker,
			&b.Tipster, &b.AdmRef, &b.Odds, &b.Stake, &b.ConfidenceScore, &b.Status,
			&b.ImageURL, &b.PlacedAt, &b.ResultAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Resolve registra o desfecho informado diretamente pelo usuário
// (WON, LOST ou VOID). Só apostas PENDING podem ser resolvidas; estados
// terminais não admitem nova transição.
func (p *Postgres) Resolve(ctx context.Context, userID, betID, status string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status = $1, result_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND status = 'PENDING'`,
		status, betID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// ou a aposta não existe/não é do usuário, ou já saiu de PENDING
		if _, gerr := p.GetByID(ctx, userID, betID); gerr != nil {
			return gerr
		}
		return ErrAlreadySettled
	}
	return nil
}

// Delete remove uma aposta do próprio usuário
func (p *Postgres) Delete(ctx context.Context, userID, betID string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM bets WHERE id = $1 AND user_id = $2`, betID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
