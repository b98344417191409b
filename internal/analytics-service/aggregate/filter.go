package aggregate

import (
	"strings"
	"time"
)

// Filter enumera as opções de escopo reconhecidas. Cada campo é opcional e
// os campos presentes são combinados em conjunção.
type Filter struct {
	Status    string     `json:"status,omitempty"`
	Sport     string     `json:"sport,omitempty"`
	Bookmaker string     `json:"bookmaker,omitempty"`
	Tipster   string     `json:"tipster,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Search    string     `json:"search,omitempty"`
}

// IsZero indica escopo all-time sem filtros.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Sport == "" && f.Bookmaker == "" &&
		f.Tipster == "" && f.From == nil && f.To == nil && f.Search == ""
}

// Match avalia o filtro em memória sobre uma aposta.
func (f Filter) Match(b Bet) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Sport != "" && (b.Sport == nil || *b.Sport != f.Sport) {
		return false
	}
	if f.Bookmaker != "" && (b.Bookmaker == nil || *b.Bookmaker != f.Bookmaker) {
		return false
	}
	if f.Tipster != "" && (b.Tipster == nil || *b.Tipster != f.Tipster) {
		return false
	}
	if f.From != nil && b.PlacedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && b.PlacedAt.After(*f.To) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hit := false
		if b.Event != nil && strings.Contains(strings.ToLower(*b.Event), needle) {
			hit = true
		}
		if b.Bookmaker != nil && strings.Contains(strings.ToLower(*b.Bookmaker), needle) {
			hit = true
		}
		if !hit {
			return false
		}
	}
	return true
}

// Apply devolve o subconjunto que satisfaz o filtro.
func Apply(bets []Bet, f Filter) []Bet {
	if f.IsZero() {
		return bets
	}
	out := make([]Bet, 0, len(bets))
	for _, b := range bets {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}
