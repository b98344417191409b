package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/bet-service/dto"
	"github.com/smartstake/smartstake-core/internal/bet-service/repo"
	"github.com/smartstake/smartstake-core/pkg/contracts/events"
)

// Repo define a superfície de persistência usada pelos handlers
type Repo interface {
	CreatePending(ctx context.Context, b *repo.Bet) (string, error)
	GetByID(ctx context.Context, userID, betID string) (*repo.Bet, error)
	List(ctx context.Context, userID string, f repo.Filter) ([]repo.Bet, error)
	Resolve(ctx context.Context, userID, betID, status string) error
	Delete(ctx context.Context, userID, betID string) error

	GetOrCreateDefault(ctx context.Context, userID string) (repo.Bankroll, error)
	OwnsBankroll(ctx context.Context, userID, bankrollID string) (bool, error)
	CreateBankroll(ctx context.Context, userID, name string) (repo.Bankroll, error)
	ListBankrolls(ctx context.Context, userID string) ([]repo.Bankroll, error)
	RotateShareToken(ctx context.Context, userID, bankrollID string) (string, error)
}

type Server struct {
	log  *zap.Logger
	repo Repo
	publ interface {
		PublishBetPlaced(context.Context, events.BetPlaced) error
	}
}

func NewServer(log *zap.Logger, r Repo, p interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
}) *Server {
	return &Server{log: log, repo: r, publ: p}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/bets", s.createBet)
	r.Get("/v1/bets", s.listBets)
	r.Get("/v1/bets/{id}", s.getBet)
	r.Post("/v1/bets/{id}/resolve", s.resolveBet)
	r.Delete("/v1/bets/{id}", s.deleteBet)

	r.Get("/v1/bankrolls", s.listBankrolls)
	r.Post("/v1/bankrolls", s.createBankroll)
	r.Post("/v1/bankrolls/{id}/share-token", s.rotateShareToken)
	return r
}

// userID extrai a identidade injetada pelo gateway após autenticação.
// Todo escopo de dados é explícito por usuário; não existe sessão ambiente.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}
	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.ImageURL == "" {
		http.Error(w, "image_url required", http.StatusBadRequest)
		return
	}
	if req.Odds != nil && *req.Odds <= 0 {
		http.Error(w, "odds must be positive", http.StatusBadRequest)
		return
	}
	if req.Stake != nil && *req.Stake <= 0 {
		http.Error(w, "stake must be positive", http.StatusBadRequest)
		return
	}
	if req.ConfidenceScore != nil && (*req.ConfidenceScore < 0 || *req.ConfidenceScore > 100) {
		http.Error(w, "confidence_score out of range", http.StatusBadRequest)
		return
	}

	// sem bankroll explícito, a aposta cai no bankroll padrão do usuário;
	// bankroll informado precisa pertencer a quem chama
	bankrollID := req.BankrollID
	if bankrollID == "" {
		br, err := s.repo.GetOrCreateDefault(r.Context(), uid)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		bankrollID = br.ID
	} else {
		ok, err := s.repo.OwnsBankroll(r.Context(), uid, bankrollID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "bankroll not found", http.StatusNotFound)
			return
		}
	}

	bet := &repo.Bet{
		UserID:          uid,
		BankrollID:      bankrollID,
		Sport:           req.Sport,
		Event:           req.Event,
		Bookmaker:       req.Bookmaker,
		Tipster:         req.Tipster,
		AdmRef:          req.AdmRef,
		Odds:            req.Odds,
		Stake:           req.Stake,
		ConfidenceScore: req.ConfidenceScore,
		ImageURL:        req.ImageURL,
	}
	if req.PlacedAt != nil {
		bet.PlacedAt = *req.PlacedAt
	}

	betID, err := s.repo.CreatePending(r.Context(), bet)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Publica evento bet_placed (best-effort)
	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:      betID,
		UserID:     uid,
		BankrollID: bankrollID,
		Sport:      req.Sport,
		Event:      req.Event,
		Bookmaker:  req.Bookmaker,
		Odds:       req.Odds,
		Stake:      req.Stake,
		ImageURL:   req.ImageURL,
	})

	writeJSON(w, http.StatusCreated, dto.CreateBetResponse{BetID: betID, Status: repo.StatusPending})
}

// listBets devolve as apostas do usuário aplicando o filtro estruturado
// vindo da query string.
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}

	f, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bets, err := s.repo.List(r.Context(), uid, f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetFromModel(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}
	b, err := s.repo.GetByID(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.BetFromModel(*b))
}

// resolveBet registra o desfecho informado pelo usuário. VOID só existe
// por este caminho; o settlement-worker nunca anula apostas.
func (s *Server) resolveBet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}
	var req dto.ResolveBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	switch req.Status {
	case repo.StatusWon, repo.StatusLost, repo.StatusVoid:
	default:
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	err := s.repo.Resolve(r.Context(), uid, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrAlreadySettled):
			http.Error(w, "bet already settled", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}
	if err := s.repo.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listBankrolls(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}
	brs, err := s.repo.ListBankrolls(r.Context(), uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.BankrollResponse, 0, len(brs))
	for _, b := range brs {
		out = append(out, dto.BankrollFromModel(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createBankroll(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}
	var req dto.CreateBankrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	br, err := s.repo.CreateBankroll(r.Context(), uid, req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, dto.BankrollFromModel(br))
}

func (s *Server) rotateShareToken(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "user required", http.StatusUnauthorized)
		return
	}
	token, err := s.repo.RotateShareToken(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"share_token": token})
}

// filterFromQuery converte a query string no filtro estruturado de listagem.
// Datas em RFC3339.
func filterFromQuery(r *http.Request) (repo.Filter, error) {
	q := r.URL.Query()
	f := repo.Filter{
		Status:    q.Get("status"),
		Sport:     q.Get("sport"),
		Bookmaker: q.Get("bookmaker"),
		Tipster:   q.Get("tipster"),
		Search:    q.Get("search"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return repo.Filter{}, errors.New("invalid from date")
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return repo.Filter{}, errors.New("invalid to date")
		}
		f.To = &t
	}
	return f, nil
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
