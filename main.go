package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"msgvis/cache"
	"msgvis/config"
	"msgvis/db"
	"msgvis/metrics"
	"msgvis/workers"
)

func main() {
	envFile := pflag.StringP("env-file", "e", ".env", "resolved environment file; the process environment is used when it does not exist")
	watch := pflag.Bool("watch", true, "reload settings when the env file changes")
	pflag.Parse()

	settings, src, err := config.LoadSettings(*envFile, pflag.CommandLine.Changed("env-file"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if settings.Debug || settings.DebugDB {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("settings loaded",
		zap.String("source", src.String()),
		zap.String("settings_module", settings.SettingsModule),
		zap.String("addr", settings.Addr()),
		zap.String("database", settings.Database.String()),
		zap.String("cache", settings.CacheBackend()),
		zap.Bool("debug", settings.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, settings.Database, logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer dbConn.Close()
	if err := dbConn.Migrate(ctx); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	q := db.New(dbConn, dbConn.Dialect)
	if settings.DebugDB {
		q = q.WithStatementLog(logger.Named("sql"))
	}

	c, err := cache.New(settings, cache.Options{KeyPrefix: "msgvis:"}, logger)
	if err != nil {
		logger.Fatal("create cache", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	hw := workers.NewHistoryWorker(dbConn, q, logger, 200, 500*time.Millisecond, 4096, func(n int) {
		m.ActionsWrittenTotal.WithLabelValues("server").Add(float64(n))
	})
	hw.Start()
	defer hw.Stop()

	store := config.NewStore(settings)
	if src.FromFile() {
		if *watch {
			if err := config.Watch(ctx, src.Path, store, logger, m.RecordReload); err != nil {
				logger.Warn("env file watch disabled", zap.Error(err))
			}
		}
		go reloadOnHangup(ctx, src.Path, store, logger, m)
	}

	srv := NewServer(&Server{
		DB:       dbConn,
		Q:        q,
		Log:      logger,
		Settings: store,
		Worker:   hw,
		Cache:    c,
		Metrics:  m,
		Registry: registry,
	})

	go func() {
		if err := srv.Start(settings.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func reloadOnHangup(ctx context.Context, path string, store *config.Store, logger *zap.Logger, m *metrics.Metrics) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			config.ReloadAndReport(path, store, logger, m.RecordReload)
		}
	}
}
