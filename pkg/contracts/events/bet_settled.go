package events

import "time"

// Evento emitido pelo settlement-worker após liquidar uma aposta pendente.
type BetSettled struct {
	BetID    string    `json:"bet_id"`
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"` // "WON" | "LOST"
	Sport    string    `json:"sport,omitempty"`
	Event    string    `json:"event,omitempty"`
	Source   string    `json:"source"` // origem da decisão (ex: "random-placeholder")
	ResultAt time.Time `json:"result_at"`
}
