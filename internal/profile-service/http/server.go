package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/profile-service/dto"
	"github.com/smartstake/smartstake-core/internal/profile-service/repo"
)

// Repo define a interface de operações de perfil usadas pelo handler HTTP
type Repo interface {
	GetOrCreate(ctx context.Context, userID, email, invitedByCode string) (repo.Profile, error)
	Get(ctx context.Context, userID string) (repo.Profile, error)
	UpdatePreferences(ctx context.Context, userID string, u repo.PreferencesUpdate) error
	SetSubscription(ctx context.Context, userID string, active bool, end *time.Time) error
	ListReferrals(ctx context.Context, referralCode string) ([]repo.Referral, error)
}

// Server expõe endpoints HTTP para perfis e programa de indicação
type Server struct {
	log           *zap.Logger
	repo          Repo
	referralBonus float64
}

// NewServer instancia o servidor HTTP de profiles. referralBonus é o
// valor em EUR creditado por convidado com assinatura ativa.
func NewServer(log *zap.Logger, repo Repo, referralBonus float64) *Server {
	return &Server{log: log, repo: repo, referralBonus: referralBonus}
}

// Router retorna o mux HTTP com as rotas da API de profiles
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/profiles/sync", s.syncProfile)          // POST
	mux.HandleFunc("/profiles", s.getProfile)                // GET ?userId=...
	mux.HandleFunc("/profiles/preferences", s.preferences)   // POST
	mux.HandleFunc("/profiles/subscription", s.subscription) // POST
	mux.HandleFunc("/profiles/referrals", s.referrals)       // GET ?userId=...
	return mux
}

// syncProfile retorna (ou cria) o perfil na primeira autenticação
func (s *Server) syncProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.SyncProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Email == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	prof, err := s.repo.GetOrCreate(r.Context(), req.UserID, req.Email, req.InvitedBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.ProfileFromModel(prof))
}

// getProfile retorna o perfil do usuário
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	prof, err := s.repo.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.ProfileFromModel(prof))
}

// preferences aplica uma atualização parcial das preferências do usuário
func (s *Server) preferences(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	var req dto.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	err := s.repo.UpdatePreferences(r.Context(), userID, repo.PreferencesUpdate{
		PreferredLang:       req.PreferredLang,
		DarkMode:            req.DarkMode,
		ProfitTarget:        req.ProfitTarget,
		AvatarURL:           req.AvatarURL,
		OnboardingCompleted: req.OnboardingCompleted,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"UPDATED"}`))
}

// subscription grava o estado da assinatura (webhook do billing)
func (s *Server) subscription(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	var req dto.SetSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.repo.SetSubscription(r.Context(), userID, req.Active, req.End); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"UPDATED"}`))
}

// referrals retorna o resumo do programa de indicação do usuário
func (s *Server) referrals(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	prof, err := s.repo.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	refs, err := s.repo.ListReferrals(r.Context(), prof.ReferralCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.ReferralsResponse{
		ReferralCode: prof.ReferralCode,
		Total:        len(refs),
		Referrals:    make([]dto.ReferralEntry, 0, len(refs)),
	}
	for _, ref := range refs {
		if ref.SubscriptionActive {
			resp.Active++
		}
		resp.Referrals = append(resp.Referrals, dto.ReferralEntry{
			Email:              ref.Email,
			SubscriptionActive: ref.SubscriptionActive,
			JoinedAt:           ref.CreatedAt,
		})
	}
	resp.BonusEUR = float64(resp.Active) * s.referralBonus
	writeJSON(w, resp)
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
