package dto

import (
	"time"

	"github.com/smartstake/smartstake-core/internal/bet-service/repo"
)

type BetResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	BankrollID      string     `json:"bankroll_id"`
	Sport           *string    `json:"sport"`
	Event           *string    `json:"event"`
	Bookmaker       *string    `json:"bookmaker"`
	Tipster         *string    `json:"tipster"`
	AdmRef          *string    `json:"adm_ref"`
	Odds            *float64   `json:"odds"`
	Stake           *float64   `json:"stake"`
	ConfidenceScore *int       `json:"confidence_score"`
	Status          string     `json:"status"`
	ImageURL        string     `json:"image_url"`
	PlacedAt        time.Time  `json:"placed_at"`
	ResultAt        *time.Time `json:"result_at"`
}

func BetFromModel(b repo.Bet) BetResponse {
	return BetResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		BankrollID:      b.BankrollID,
		Sport:           b.Sport,
		Event:           b.Event,
		Bookmaker:       b.Bookmaker,
		Tipster:         b.Tipster,
		AdmRef:          b.AdmRef,
		Odds:            b.Odds,
		Stake:           b.Stake,
		ConfidenceScore: b.ConfidenceScore,
		Status:          b.Status,
		ImageURL:        b.ImageURL,
		PlacedAt:        b.PlacedAt,
		ResultAt:        b.ResultAt,
	}
}

type CreateBetResponse struct {
	BetID  string `json:"bet_id"`
	Status string `json:"status"`
}

type BankrollResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	ShareToken string    `json:"share_token"`
	CreatedAt  time.Time `json:"created_at"`
}

func BankrollFromModel(b repo.Bankroll) BankrollResponse {
	return BankrollResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		Name:       b.Name,
		ShareToken: b.ShareToken,
		CreatedAt:  b.CreatedAt,
	}
}
