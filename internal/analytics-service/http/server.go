package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smartstake/smartstake-core/internal/analytics-service/aggregate"
)

// ReadRepo é a fonte de apostas do agregador
type ReadRepo interface {
	ListBets(ctx context.Context, userID string) ([]aggregate.Bet, error)
}

// SummaryCache guarda o resumo por usuário (Redis em produção)
type SummaryCache interface {
	GetSummary(ctx context.Context, userID string, dst any) (bool, error)
	SetSummary(ctx context.Context, userID string, v any, ttl time.Duration) error
}

// API expõe os endpoints REST de analytics de apostas.
// Utiliza um repositório de leitura (Postgres) e cache (Redis).
type API struct {
	ReadRepo ReadRepo           // acesso ao banco de dados
	Cache    SummaryCache       // cache de resumo por usuário
	Basis    aggregate.ROIBasis // base do denominador do ROI
	CacheTTL time.Duration
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/analytics", a.getSummary)               // Resumo completo (cache-first sem filtros)
	r.Get("/v1/analytics/cumulative", a.getCumulative) // Série de lucro acumulado por mês
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// userID extrai a identidade do chamador; o gateway injeta o header.
func userID(r *http.Request) string { return r.Header.Get("X-User-ID") }

// filterFromQuery monta o filtro conjuntivo a partir da query string
func filterFromQuery(r *http.Request) aggregate.Filter {
	q := r.URL.Query()
	f := aggregate.Filter{
		Status:    q.Get("status"),
		Sport:     q.Get("sport"),
		Bookmaker: q.Get("bookmaker"),
		Tipster:   q.Get("tipster"),
		Search:    q.Get("search"),
	}
	if s := q.Get("from"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			f.From = &t
		}
	}
	if s := q.Get("to"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			f.To = &t
		}
	}
	return f
}

// getSummary retorna o resumo agregado do usuário. Sem filtros a resposta
// vem preferencialmente do cache; resumos filtrados são sempre calculados.
func (a *API) getSummary(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing user"})
		return
	}
	f := filterFromQuery(r)

	if f.IsZero() {
		var fromCache aggregate.Summary
		if ok, _ := a.Cache.GetSummary(r.Context(), uid, &fromCache); ok {
			writeJSON(w, http.StatusOK, fromCache)
			return
		}
	}

	bets, err := a.ReadRepo.ListBets(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sum := aggregate.Compute(aggregate.Apply(bets, f), a.Basis)

	if f.IsZero() {
		_ = a.Cache.SetSummary(r.Context(), uid, sum, a.CacheTTL)
	}
	writeJSON(w, http.StatusOK, sum)
}

// getCumulative retorna a série de lucro acumulado por mês, útil para
// o gráfico de evolução da banca.
func (a *API) getCumulative(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing user"})
		return
	}
	bets, err := a.ReadRepo.ListBets(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sum := aggregate.Compute(aggregate.Apply(bets, filterFromQuery(r)), a.Basis)
	cum := aggregate.CumulativeProfit(sum.MonthlyData)

	type point struct {
		Month  string  `json:"month"`
		Profit float64 `json:"profit"`
	}
	out := make([]point, 0, len(cum))
	for i, m := range sum.MonthlyData {
		out = append(out, point{Month: m.Month, Profit: cum[i]})
	}
	writeJSON(w, http.StatusOK, out)
}
