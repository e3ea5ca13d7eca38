package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/02loveslollipop/patient-health-monitor/services/api/analysis"
	"github.com/02loveslollipop/patient-health-monitor/services/api/config"
	"github.com/02loveslollipop/patient-health-monitor/services/api/db"
	httpserver "github.com/02loveslollipop/patient-health-monitor/services/api/http"
	"github.com/02loveslollipop/patient-health-monitor/services/internal/logger"
)

// store is everything main needs from either backend.
type store interface {
	httpserver.Store
	analysis.ReadingStore
	Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat, "health-api")
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logr.Fatal("store init failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.Close()

	svc := analysis.NewService(st, cfg.QueryTimeout, logr.Named("analysis"))
	srv := httpserver.New(cfg, st, svc, logr.Named("http"))
	logr.Info("REST API listening",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("driver", cfg.StoreDriver),
		zap.String("timezone", cfg.Location.String()),
	)

	if err := srv.Run(ctx); err != nil {
		logr.Fatal("server error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		seed := db.Seed{}
		if cfg.MemorySeedPath != "" {
			var err error
			if seed, err = db.LoadSeedFile(cfg.MemorySeedPath); err != nil {
				return nil, err
			}
		}
		return db.NewMemoryStore(seed, cfg.Location), nil
	case config.DriverPostgres:
		pg, err := db.New(ctx, cfg.DatabaseURL, db.Options{
			MaxConns:  cfg.DBMaxConns,
			MinConns:  cfg.DBMinConns,
			A1CColumn: cfg.DiabetesA1CColumn,
		})
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
