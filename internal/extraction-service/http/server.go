package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/extraction-service/vision"
)

// Extractor é o cliente de visão usado pelo handler
type Extractor interface {
	Extract(ctx context.Context, imageURL string) (vision.Extraction, error)
}

// DLQ recebe requisições de extração que esgotaram os retries
type DLQ interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Server expõe o endpoint de extração de comprovantes
type Server struct {
	Log       *zap.Logger
	Extractor Extractor
	DLQ       DLQ // opcional

	OnExtracted func()       // métricas (counter++)
	OnError     func(string) // métricas por fase
}

type extractRequest struct {
	ImageURL string `json:"image_url"`
}

// Router retorna o roteador HTTP do serviço de extração
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/extract", s.extract)
	return r
}

// extract analisa um comprovante e devolve os campos extraídos.
// Falhas transitórias do provedor são retentadas; ao esgotar os
// retries a requisição vai para a DLQ e o cliente recebe 502.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if req.ImageURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image_url required"})
		return
	}

	ex, err := s.Extractor.Extract(r.Context(), req.ImageURL)
	if err != nil {
		// Retry simples: tenta até 3 vezes antes de enviar para DLQ
		const retries = 3
		for i := 0; i < retries; i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			if ex, err = s.Extractor.Extract(r.Context(), req.ImageURL); err == nil {
				break
			}
		}
		if err != nil {
			s.Log.Error("vision extract failed", zap.String("imageUrl", req.ImageURL), zap.Error(err))
			if s.OnError != nil {
				s.OnError("extract")
			}
			if s.DLQ != nil {
				payload, _ := json.Marshal(req)
				_ = s.DLQ.Publish(r.Context(), req.ImageURL, payload)
			}
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "extraction failed"})
			return
		}
	}

	if s.OnExtracted != nil {
		s.OnExtracted()
	}
	writeJSON(w, http.StatusOK, ex)
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
