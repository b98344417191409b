package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const defaultBankrollName = "Principale"

// GetOrCreateDefault retorna o bankroll padrão do usuário, criando na
// primeira aposta caso ainda não exista. Usa transação para garantir
// atomicidade.
func (p *Postgres) GetOrCreateDefault(ctx context.Context, userID string) (Bankroll, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Bankroll{}, err
	}
	defer tx.Rollback()

	var b Bankroll
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, name, share_token, created_at, updated_at
		FROM bankrolls WHERE user_id = $1
		ORDER BY created_at
		LIMIT 1`, userID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.ShareToken, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		b = Bankroll{
			ID:         uuid.NewString(),
			UserID:     userID,
			Name:       defaultBankrollName,
			ShareToken: uuid.NewString(),
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bankrolls (id, user_id, name, share_token)
			VALUES ($1,$2,$3,$4)`,
			b.ID, b.UserID, b.Name, b.ShareToken); err != nil {
			return Bankroll{}, err
		}
	} else if err != nil {
		return Bankroll{}, err
	}

	if err := tx.Commit(); err != nil {
		return Bankroll{}, err
	}
	return b, nil
}

// OwnsBankroll verifica se o bankroll existe e pertence ao usuário
func (p *Postgres) OwnsBankroll(ctx context.Context, userID, bankrollID string) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx,
		`SELECT 1 FROM bankrolls WHERE id = $1 AND user_id = $2`, bankrollID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateBankroll cria um bankroll nomeado com share token próprio
func (p *Postgres) CreateBankroll(ctx context.Context, userID, name string) (Bankroll, error) {
	b := Bankroll{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		ShareToken: uuid.NewString(),
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bankrolls (id, user_id, name, share_token)
		VALUES ($1,$2,$3,$4)`,
		b.ID, b.UserID, b.Name, b.ShareToken)
	if err != nil {
		return Bankroll{}, err
	}
	return b, nil
}

// ListBankrolls retorna os bankrolls do usuário
func (p *Postgres) ListBankrolls(ctx context.Context, userID string) ([]Bankroll, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, name, share_token, created_at, updated_at
		FROM bankrolls WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Bankroll, 0)
	for rows.Next() {
		var b Bankroll
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.ShareToken, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// RotateShareToken troca o token de compartilhamento, invalidando links
// externos anteriores.
func (p *Postgres) RotateShareToken(ctx context.Context, userID, bankrollID string) (string, error) {
	token := uuid.NewString()
	res, err := p.db.ExecContext(ctx, `
		UPDATE bankrolls SET share_token = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3`,
		token, bankrollID, userID)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNotFound
	}
	return token, nil
}
