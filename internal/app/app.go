package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/sportunion-stats/external/statsapi"
	"github.com/riskibarqy/sportunion-stats/internal/config"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/sportunion-stats/internal/interfaces/httpapi"
	"github.com/riskibarqy/sportunion-stats/internal/platform/cache"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
	"github.com/riskibarqy/sportunion-stats/internal/platform/resilience"
	"github.com/riskibarqy/sportunion-stats/internal/usecase"
	"go.uber.org/zap"
)

// Runtime holds the services shared by the API and the ETL binaries.
type Runtime struct {
	Stats   *usecase.StatsService
	Seasons *usecase.SeasonService
	db      *sqlx.DB
}

func NewRuntime(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	loader := statsapi.NewLoader(statsapi.LoaderConfig{
		Timeout:      cfg.StatsAPITimeout,
		MaxBodyBytes: cfg.StatsAPIMaxBodyBytes,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsAPICircuitEnabled,
			FailureThreshold: cfg.StatsAPICircuitFailureCount,
			OpenTimeout:      cfg.StatsAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsAPICircuitHalfOpenMaxReq,
		},
	})
	seasonSvc := usecase.NewSeasonService(loader, logger)

	rt := &Runtime{Seasons: seasonSvc}
	var repo stats.Repository
	if cfg.DBEnabled {
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		rt.db = db
		repo = postgres.NewSeasonTablesRepository(db)
	}

	rt.Stats = usecase.NewStatsService(seasonSvc, usecase.StatsServiceConfig{
		Seasons:         cfg.Seasons,
		PayloadMaxChars: cfg.PayloadMaxChars,
		Repository:      repo,
		Memo:            cache.NewStore[stats.Combined](cfg.MemoTTL),
		Logger:          logger,
	})
	return rt, nil
}

func (r *Runtime) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func NewHTTPServer(cfg config.Config, rt *Runtime, logger *logging.Logger) (*http.Server, error) {
	if rt == nil || rt.Stats == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}

	handler := httpapi.NewHandler(rt.Stats, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RefreshToken:       cfg.RefreshToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger.Named("http").Zap()),
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
