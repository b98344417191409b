package dto

import (
	"time"

	"github.com/smartstake/smartstake-core/internal/profile-service/repo"
)

type SyncProfileRequest struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	InvitedBy string `json:"invited_by,omitempty"`
}

type UpdatePreferencesRequest struct {
	PreferredLang       *string  `json:"preferred_lang,omitempty"`
	DarkMode            *bool    `json:"dark_mode,omitempty"`
	ProfitTarget        *float64 `json:"profit_target,omitempty"`
	AvatarURL           *string  `json:"avatar_url,omitempty"`
	OnboardingCompleted *bool    `json:"onboarding_completed,omitempty"`
}

type SetSubscriptionRequest struct {
	Active bool       `json:"active"`
	End    *time.Time `json:"end,omitempty"`
}

type ProfileResponse struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	ReferralCode        string     `json:"referral_code"`
	InvitedBy           *string    `json:"invited_by,omitempty"`
	SubscriptionActive  bool       `json:"subscription_active"`
	SubscriptionEnd     *time.Time `json:"subscription_end,omitempty"`
	PreferredLang       string     `json:"preferred_lang"`
	DarkMode            bool       `json:"dark_mode"`
	ProfitTarget        *float64   `json:"profit_target,omitempty"`
	AvatarURL           *string    `json:"avatar_url,omitempty"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CreatedAt           time.Time  `json:"created_at"`
}

func ProfileFromModel(p repo.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                  p.ID,
		Email:               p.Email,
		ReferralCode:        p.ReferralCode,
		InvitedBy:           p.InvitedBy,
		SubscriptionActive:  p.SubscriptionActive,
		SubscriptionEnd:     p.SubscriptionEnd,
		PreferredLang:       p.PreferredLang,
		DarkMode:            p.DarkMode,
		ProfitTarget:        p.ProfitTarget,
		AvatarURL:           p.AvatarURL,
		OnboardingCompleted: p.OnboardingCompleted,
		CreatedAt:           p.CreatedAt,
	}
}

type ReferralEntry struct {
	Email              string    `json:"email"`
	SubscriptionActive bool      `json:"subscription_active"`
	JoinedAt           time.Time `json:"joined_at"`
}

// ReferralsResponse é o resumo do programa de indicação: bonus_eur é
// o total acumulado pelos convidados com assinatura ativa.
type ReferralsResponse struct {
	ReferralCode string          `json:"referral_code"`
	Total        int             `json:"total"`
	Active       int             `json:"active"`
	BonusEUR     float64         `json:"bonus_eur"`
	Referrals    []ReferralEntry `json:"referrals"`
}
