package dto

import "time"

type CreateBetRequest struct {
	BankrollID      string     `json:"bankroll_id,omitempty"`
	Sport           *string    `json:"sport"`
	Event           *string    `json:"event"`
	Bookmaker       *string    `json:"bookmaker"`
	Tipster         *string    `json:"tipster"`
	AdmRef          *string    `json:"adm_ref"`
	Odds            *float64   `json:"odds"`
	Stake           *float64   `json:"stake"`
	ConfidenceScore *int       `json:"confidence_score"`
	ImageURL        string     `json:"image_url"`
	PlacedAt        *time.Time `json:"placed_at,omitempty"`
}

type ResolveBetRequest struct {
	Status string `json:"status"` // WON | LOST | VOID
}

type CreateBankrollRequest struct {
	Name string `json:"name"`
}
