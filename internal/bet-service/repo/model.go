package repo

import "time"

// Status possíveis de uma aposta. VOID existe só para edição direta do
// usuário (aposta anulada); o settlement-worker nunca escreve VOID.
const (
	StatusPending = "PENDING"
	StatusWon     = "WON"
	StatusLost    = "LOST"
	StatusVoid    = "VOID"
)

// Bet é o modelo persistido no Postgres. Os campos descritivos vêm da
// extração do comprovante e são todos opcionais; a imagem de origem é
// obrigatória — toda aposta nasce de um upload.
type Bet struct {
	ID              string
	UserID          string
	BankrollID      string
	Sport           *string
	Event           *string
	Bookmaker       *string
	Tipster         *string
	AdmRef          *string
	Odds            *float64
	Stake           *float64
	ConfidenceScore *int
	Status          string
	ImageURL        string
	PlacedAt        time.Time
	ResultAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Bankroll é um caixa nomeado de capital de um usuário.
// share_token permite compartilhamento externo somente-leitura.
type Bankroll struct {
	ID         string
	UserID     string
	Name       string
	ShareToken string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
