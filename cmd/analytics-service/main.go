package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/analytics-service/aggregate"
	"github.com/smartstake/smartstake-core/internal/analytics-service/cache"
	"github.com/smartstake/smartstake-core/internal/analytics-service/consumer"
	ahttp "github.com/smartstake/smartstake-core/internal/analytics-service/http"
	"github.com/smartstake/smartstake-core/internal/analytics-service/pubsub"
	"github.com/smartstake/smartstake-core/internal/analytics-service/repo"
	"github.com/smartstake/smartstake-core/internal/analytics-service/ws"
	sharedcache "github.com/smartstake/smartstake-core/internal/shared/cache"
	"github.com/smartstake/smartstake-core/internal/shared/config"
	"github.com/smartstake/smartstake-core/internal/shared/db"
	"github.com/smartstake/smartstake-core/internal/shared/kafka"
	"github.com/smartstake/smartstake-core/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	summaryCache := cache.New(redisClient)
	readRepo := &repo.ReadRepo{DB: pg}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// WebSocket hub + assinatura do canal de liquidações
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub)

	// Consumer Kafka (consumer group analytics-service): invalida cache
	// e repassa liquidações para o feed WebSocket
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetSettled, "analytics-service")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "analytics_messages_consumed_total", Help: "mensagens consumidas"})
	invalidated := prometheus.NewCounter(prometheus.CounterOpts{Name: "analytics_cache_invalidations_total", Help: "invalidações de cache"})
	broadcasts := prometheus.NewCounter(prometheus.CounterOpts{Name: "analytics_broadcasts_total", Help: "broadcasts enviados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "analytics_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, invalidated, broadcasts, errorsBy)

	proc := &consumer.Processor{
		Log:           log,
		Reader:        reader,
		Cache:         summaryCache,
		Broadcaster:   pubsub.NewRedisBroadcaster(redisClient),
		Channel:       cfg.RedisPubSubChannel,
		OnConsumed:    func() { consumed.Inc() },
		OnInvalidated: func() { invalidated.Inc() },
		OnBroadcast:   func() { broadcasts.Inc() },
		OnError:       func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	go func() {
		if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal("consumer stopped with error", zap.Error(err))
		}
	}()

	// API REST + WebSocket no mux público
	api := &ahttp.API{
		ReadRepo: readRepo,
		Cache:    summaryCache,
		Basis:    aggregate.ParseBasis(cfg.ROIBasis),
		CacheTTL: cfg.SummaryCacheTTL,
	}
	appMux := http.NewServeMux()
	appMux.Handle("/", api.Router())
	appMux.HandleFunc("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: appMux,
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			hctx, hcancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer hcancel()
			if err := pg.PingContext(hctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			if err := redisClient.Ping(hctx).Err(); err != nil {
				http.Error(w, "redis", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Encerra o servidor público quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = apiSrv.Shutdown(sctx)
	}()

	log.Info("analytics-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
	log.Info("analytics-service stopped")
}
