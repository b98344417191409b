package events

type BetPlaced struct {
	BetID      string   `json:"bet_id"`
	UserID     string   `json:"user_id"`
	BankrollID string   `json:"bankroll_id"`
	Sport      *string  `json:"sport,omitempty"`
	Event      *string  `json:"event,omitempty"`
	Bookmaker  *string  `json:"bookmaker,omitempty"`
	Odds       *float64 `json:"odds,omitempty"`
	Stake      *float64 `json:"stake,omitempty"`
	ImageURL   string   `json:"image_url"`
	TsUnixMs   int64    `json:"ts_unix_ms"`
}
