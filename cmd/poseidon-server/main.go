// Command poseidon-server runs the query execution core's HTTP API: submit
// a plan, run it, get back results (spec §6 "Plan surface"). Backed by
// internal/gstore by default, or internal/pgstore when DATABASE_URL is set.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/api"
	"github.com/dbis-ilm/poseidon-go/internal/config"
	"github.com/dbis-ilm/poseidon-go/internal/dbpool"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
	"github.com/dbis-ilm/poseidon-go/internal/pgstore"
	"github.com/dbis-ilm/poseidon-go/internal/telemetry"
)

var version = "dev"

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, tm, pool, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("opening store")
	}
	if pool != nil {
		defer pool.Close()
	}

	var hub *telemetry.Hub
	if cfg.TelemetryEnabled {
		hub = telemetry.NewHub(log)
		go hub.Run(ctx)
		defer hub.Shutdown()
	}

	router := api.NewRouter(&api.RouterDeps{
		Log:           log,
		Store:         store,
		TM:            tm,
		Pool:          pool,
		Hub:           hub,
		CORSOrigins:   cfg.CORSOrigins,
		DefaultChunks: cfg.DefaultScanChunks,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("poseidon-server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// openStore wires internal/pgstore when a database URL is configured, and
// falls back to the required in-memory internal/gstore otherwise (spec §6
// "backing store is pluggable").
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (graph.GraphStore, graph.TransactionManager, *dbpool.Pool, error) {
	if !cfg.UsesPgstore() {
		tm := gstore.NewTransactionManager()
		return gstore.New(tm, log), tm, nil, nil
	}

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := pgstore.RunMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	store, err := pgstore.New(ctx, pool, log)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return store, store, pool, nil
}
