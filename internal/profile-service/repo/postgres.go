package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Profile é o perfil de um usuário autenticado. Criado na primeira
// autenticação; nunca é removido fisicamente.
type Profile struct {
	ID                  string
	Email               string
	ReferralCode        string
	InvitedBy           *string
	StripeCustomerID    *string
	SubscriptionActive  bool
	SubscriptionEnd     *time.Time
	PreferredLang       string
	DarkMode            bool
	ProfitTarget        *float64
	AvatarURL           *string
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Referral é a visão de um perfil convidado pelo código do usuário.
type Referral struct {
	Email              string
	SubscriptionActive bool
	CreatedAt          time.Time
}

// Postgres implementa operações de perfil em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const profileColumns = `id, email, referral_code, invited_by, stripe_customer_id,
	subscription_active, subscription_end, preferred_lang, dark_mode, profit_target,
	avatar_url, onboarding_completed, created_at, updated_at`

// newReferralCode gera um código curto e legível a partir de um uuid.
func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
}

// GetOrCreate retorna o perfil do usuário, criando na primeira autenticação.
// invitedByCode só é gravado quando aponta para um código de referral
// existente; código inválido é ignorado em silêncio (o convite não bloqueia
// o cadastro). Usa transação para garantir atomicidade.
func (p *Postgres) GetOrCreate(ctx context.Context, userID, email, invitedByCode string) (Profile, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Profile{}, err
	}
	defer tx.Rollback()

	var prof Profile
	err = tx.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID).
		Scan(&prof.ID, &prof.Email, &prof.ReferralCode, &prof.InvitedBy, &prof.StripeCustomerID,
			&prof.SubscriptionActive, &prof.SubscriptionEnd, &prof.PreferredLang, &prof.DarkMode,
			&prof.ProfitTarget, &prof.AvatarURL, &prof.OnboardingCompleted, &prof.CreatedAt, &prof.UpdatedAt)
	if err == sql.ErrNoRows {
		var invitedBy *string
		if invitedByCode != "" {
			var exists string
			ierr := tx.QueryRowContext(ctx,
				`SELECT referral_code FROM profiles WHERE referral_code = $1`, invitedByCode).Scan(&exists)
			if ierr == nil {
				invitedBy = &exists
			} else if ierr != sql.ErrNoRows {
				return Profile{}, ierr
			}
		}

		prof = Profile{
			ID:            userID,
			Email:         email,
			ReferralCode:  newReferralCode(),
			InvitedBy:     invitedBy,
			PreferredLang: "it",
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (id, email, referral_code, invited_by, preferred_lang)
			VALUES ($1,$2,$3,$4,$5)`,
			prof.ID, prof.Email, prof.ReferralCode, prof.InvitedBy, prof.PreferredLang); err != nil {
			return Profile{}, err
		}
	} else if err != nil {
		return Profile{}, err
	}

	if err := tx.Commit(); err != nil {
		return Profile{}, err
	}
	return prof, nil
}

// Get retorna o perfil pelo id do usuário
func (p *Postgres) Get(ctx context.Context, userID string) (Profile, error) {
	var prof Profile
	err := p.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID).
		Scan(&prof.ID, &prof.Email, &prof.ReferralCode, &prof.InvitedBy, &prof.StripeCustomerID,
			&prof.SubscriptionActive, &prof.SubscriptionEnd, &prof.PreferredLang, &prof.DarkMode,
			&prof.ProfitTarget, &prof.AvatarURL, &prof.OnboardingCompleted, &prof.CreatedAt, &prof.UpdatedAt)
	if err == sql.ErrNoRows {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return prof, nil
}

// PreferencesUpdate agrupa os campos mutáveis pelo usuário nas
// configurações; nil preserva o valor atual.
type PreferencesUpdate struct {
	PreferredLang       *string
	DarkMode            *bool
	ProfitTarget        *float64
	AvatarURL           *string
	OnboardingCompleted *bool
}

// UpdatePreferences aplica uma atualização parcial de preferências
func (p *Postgres) UpdatePreferences(ctx context.Context, userID string, u PreferencesUpdate) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE profiles SET
			preferred_lang = COALESCE($1, preferred_lang),
			dark_mode = COALESCE($2, dark_mode),
			profit_target = COALESCE($3, profit_target),
			avatar_url = COALESCE($4, avatar_url),
			onboarding_completed = COALESCE($5, onboarding_completed),
			updated_at = NOW()
		WHERE id = $6`,
		u.PreferredLang, u.DarkMode, u.ProfitTarget, u.AvatarURL, u.OnboardingCompleted, userID)
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

// SetSubscription grava a flag de assinatura e a data de expiração
func (p *Postgres) SetSubscription(ctx context.Context, userID string, active bool, end *time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE profiles SET subscription_active = $1, subscription_end = $2, updated_at = NOW()
		WHERE id = $3`,
		active, end, userID)
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

// ListReferrals retorna os perfis convidados por um código de referral,
// do convite mais antigo para o mais recente.
func (p *Postgres) ListReferrals(ctx context.Context, referralCode string) ([]Referral, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT email, subscription_active, created_at
		FROM profiles
		WHERE invited_by = $1
		ORDER BY created_at`, referralCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Referral, 0)
	for rows.Next() {
		var r Referral
		if err := rows.Scan(&r.Email, &r.SubscriptionActive, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
