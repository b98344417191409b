package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	ehttp "github.com/smartstake/smartstake-core/internal/extraction-service/http"
	"github.com/smartstake/smartstake-core/internal/extraction-service/producer"
	"github.com/smartstake/smartstake-core/internal/extraction-service/vision"
	"github.com/smartstake/smartstake-core/internal/shared/config"
	"github.com/smartstake/smartstake-core/internal/shared/kafka"
	"github.com/smartstake/smartstake-core/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Cliente do provedor de visão (OpenAI ou vision-simulator)
	client := vision.NewClient(cfg.VisionAPIURL, cfg.VisionAPIKey, cfg.VisionModel)

	// DLQ para requisições com retries esgotados
	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicExtractionDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus
	extracted := prometheus.NewCounter(prometheus.CounterOpts{Name: "extraction_success_total", Help: "extrações concluídas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "extraction_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(extracted, errorsBy)

	api := &ehttp.Server{
		Log:         log,
		Extractor:   client,
		DLQ:         &producer.KafkaDLQ{Writer: dlqWriter},
		OnExtracted: func() { extracted.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("extraction-service listening",
		zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)),
		zap.String("model", cfg.VisionModel),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
