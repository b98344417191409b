package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/shared/config"
	"github.com/smartstake/smartstake-core/internal/shared/logger"
)

// Catálogo fixo de comprovantes simulados para geração de extrações
var betCatalog = []map[string]any{
	{"sport": "Calcio", "event": "Inter - Milan", "bookmaker": "Sisal"},
	{"sport": "Calcio", "event": "Juventus - Napoli", "bookmaker": "Snai"},
	{"sport": "Tennis", "event": "Sinner - Alcaraz", "bookmaker": "Bet365"},
	{"sport": "Basket", "event": "Virtus Bologna - Olimpia Milano", "bookmaker": "Eurobet"},
	{"sport": "Calcio", "event": "Roma - Lazio", "bookmaker": "Goldbet"},
}

// Métricas Prometheus para monitoramento das extrações simuladas
var (
	extractionsServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vision_sim_extractions_total",
		Help: "Total de extrações simuladas servidas",
	})
	partialExtractions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vision_sim_partial_total",
		Help: "Extrações simuladas com campos nulos",
	})
)

// gera número aleatório entre min e max
func rnd(min, max float64) float64 {
	return (rand.Float64() * (max - min)) + min
}

// chatCompletions responde no formato chat-completions da OpenAI com uma
// extração plausível no content. ~20% das respostas vêm com campos nulos
// e confiança baixa, imitando comprovantes ilegíveis.
func chatCompletions(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	base := betCatalog[rand.Intn(len(betCatalog))]
	extraction := map[string]any{
		"sport":            base["sport"],
		"event":            base["event"],
		"bookmaker":        base["bookmaker"],
		"odds":             float64(int(rnd(1.20, 6.00)*100)) / 100,
		"stake":            float64(rand.Intn(20)+1) * 5,
		"adm_ref":          fmt.Sprintf("N. %09d", rand.Intn(1_000_000_000)),
		"confidence_score": rand.Intn(25) + 75,
	}
	if rand.Intn(100) < 20 {
		extraction["odds"] = nil
		extraction["stake"] = nil
		extraction["adm_ref"] = nil
		extraction["confidence_score"] = rand.Intn(40) + 10
		partialExtractions.Inc()
	}
	content, _ := json.Marshal(extraction)

	resp := map[string]any{
		"id":      fmt.Sprintf("chatcmpl-sim-%d", time.Now().UnixNano()),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": string(content)},
				"finish_reason": "stop",
			},
		},
	}
	extractionsServed.Inc()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(extractionsServed, partialExtractions)

	// ==== MUX PÚBLICO (HTTP principal): API compatível com OpenAI
	appMux := http.NewServeMux()
	appMux.HandleFunc("/v1/chat/completions", chatCompletions)

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	// Servidor de métricas em goroutine
	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("vision simulator (metrics) running",
			zap.String("addr", metricsAddr),
			zap.String("paths", "/healthz,/metrics"),
		)
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// Servidor público (API de visão simulada)
	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("vision simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/v1/chat/completions"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
