package topics

const (
	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	BetPlacedDLQ  = "bet_placed_dlq"
	ExtractionDLQ = "extraction_dlq"
)
