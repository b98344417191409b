package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// CheckFunc valida as dependências críticas do serviço (banco, redis, ...)
type CheckFunc func(ctx context.Context) error

// StartMetricsServer sobe o sidecar de observabilidade (/metrics e /healthz)
// na porta dedicada, em goroutine própria. Devolve o *http.Server pra quem
// quiser encerrar junto com o serviço.
func StartMetricsServer(port string, check CheckFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := check(ctx); err != nil {
			http.Error(w, fmt.Sprintf("unhealthy: %v", err), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
