package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/shared/config"
	"github.com/smartstake/smartstake-core/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func target(envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	bets := rp(target("BET_URL", "http://localhost:8083"))
	profiles := rp(target("PROFILE_URL", "http://localhost:8082"))
	analytics := rp(target("ANALYTICS_URL", "http://localhost:8080"))
	extraction := rp(target("EXTRACTION_URL", "http://localhost:8085"))

	mux := http.NewServeMux()

	// bets (ex.: /api/bets/* -> bet-service)
	mux.Handle("/api/bets/", http.StripPrefix("/api/bets", bets))

	// profiles (ex.: /api/profiles/* -> profile-service)
	mux.Handle("/api/profiles/", http.StripPrefix("/api/profiles", profiles))

	// analytics (ex.: /api/analytics/* -> analytics-service, inclui /ws)
	mux.Handle("/api/analytics/", http.StripPrefix("/api/analytics", analytics))

	// extração (ex.: /api/extract/* -> extraction-service)
	mux.Handle("/api/extract/", http.StripPrefix("/api/extract", extraction))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
