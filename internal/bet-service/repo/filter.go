package repo

import (
	"fmt"
	"strings"
	"time"
)

// Filter enumera as opções de listagem reconhecidas; campos presentes são
// combinados em conjunção. Substitui a composição ad-hoc de query da UI.
type Filter struct {
	Status    string
	Sport     string
	Bookmaker string
	Tipster   string
	From      *time.Time
	To        *time.Time
	Search    string
}

// buildWhere monta a cláusula WHERE parametrizada para a listagem de apostas.
// O escopo por usuário é sempre o primeiro predicado.
func buildWhere(userID string, f Filter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Sport != "" {
		add("sport = $%d", f.Sport)
	}
	if f.Bookmaker != "" {
		add("bookmaker = $%d", f.Bookmaker)
	}
	if f.Tipster != "" {
		add("tipster = $%d", f.Tipster)
	}
	if f.From != nil {
		add("placed_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("placed_at <= $%d", *f.To)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(event ILIKE $%d OR bookmaker ILIKE $%d)", n, n))
	}

	return strings.Join(conds, " AND "), args
}
