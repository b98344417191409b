package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/settlement-worker/resolver"
	"github.com/smartstake/smartstake-core/internal/settlement-worker/store"
	"github.com/smartstake/smartstake-core/internal/shared/config"
	"github.com/smartstake/smartstake-core/internal/shared/db"
	"github.com/smartstake/smartstake-core/internal/shared/kafka"
	"github.com/smartstake/smartstake-core/internal/shared/logger"
	"github.com/smartstake/smartstake-core/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka producer: publica eventos bet_settled
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	// Métricas Prometheus por etapa da liquidação
	checked := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_bets_checked_total", Help: "apostas avaliadas"})
	updated := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_bets_updated_total", Help: "apostas liquidadas por status"}, []string{"status"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_bets_skipped_total", Help: "apostas puladas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_runs_total", Help: "execuções do resolver"})
	prometheus.MustRegister(checked, updated, skipped, errorsBy, runs)

	res := &resolver.Resolver{
		Log:           log,
		Store:         store.NewPostgres(pg),
		Source:        resolver.NewRandomSource(cfg.RandomWinRate),
		MaxPendingAge: cfg.MaxPendingAge,

		OnChecked: func() { checked.Inc() },
		OnUpdated: func(status string) { updated.WithLabelValues(status).Inc() },
		OnSkipped: func() { skipped.Inc() },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após liquidar, publica bet_settled pro analytics invalidar
		// cache e alimentar o feed WebSocket
		OnAfterSettle: func(ev events.BetSettled) {
			b, _ := json.Marshal(ev)
			wctx, wcancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer wcancel()
			if err := kafka.WriteJSON(wctx, settledWriter, ev.UserID, b); err != nil {
				log.Warn("bet_settled publish failed", zap.Error(err))
			}
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runOnce := func() resolver.Report {
		runs.Inc()
		rep, err := res.Run(ctx)
		if err != nil {
			log.Error("settlement run failed", zap.Error(err))
			return rep
		}
		log.Info("settlement run finished",
			zap.Int("checked", rep.Checked),
			zap.Int("updated", rep.Updated),
			zap.Int("skipped", rep.Skipped),
		)
		return rep
	}

	// Agendamento recorrente (default @hourly)
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.SettlementSchedule, func() { runOnce() }); err != nil {
		log.Fatal("invalid settlement schedule", zap.String("schedule", cfg.SettlementSchedule), zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Gatilho manual: POST /settlement/run executa uma passada imediata
	appMux := http.NewServeMux()
	appMux.HandleFunc("/settlement/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rep := runOnce()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	})
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: appMux,
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			hctx, hcancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer hcancel()
			if err := pg.PingContext(hctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = apiSrv.Shutdown(sctx)
	}()

	log.Info("settlement-worker started",
		zap.String("schedule", cfg.SettlementSchedule),
		zap.Duration("maxPendingAge", cfg.MaxPendingAge),
		zap.String("trigger", fmt.Sprintf(":%s/settlement/run", cfg.HTTPPort)),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("trigger server", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
