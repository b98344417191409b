package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	phttp "github.com/smartstake/smartstake-core/internal/profile-service/http"
	"github.com/smartstake/smartstake-core/internal/profile-service/repo"
	"github.com/smartstake/smartstake-core/internal/shared/config"
	"github.com/smartstake/smartstake-core/internal/shared/db"
	"github.com/smartstake/smartstake-core/internal/shared/logger"
	"github.com/smartstake/smartstake-core/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	repository := repo.NewPostgres(pg)
	api := phttp.NewServer(log, repository, cfg.ReferralBonusEUR)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("profile-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
