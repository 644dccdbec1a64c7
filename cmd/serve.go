package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "velocity/docs"
	"velocity/internal/alerting"
	"velocity/internal/api"
	"velocity/internal/cache"
	"velocity/internal/manager"
	"velocity/internal/messaging"
	"velocity/internal/metrics"
	"velocity/internal/readiness"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the event consumers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the schema before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("PostgreSQL connected")

	if migrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	a := api.NewAPI(db, log)
	a.CacheTTL = cfg.Redis.CacheTTL

	// Init Redis
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		rc := cache.NewRedis(client, "velocity", log)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("Redis unavailable, caching disabled", zap.Error(err))
			_ = rc.Close()
		} else {
			defer rc.Close()
			a.Cache = rc
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// Init RabbitMQ
	var (
		em     *manager.EventManager
		broker func() bool
	)
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := messaging.NewRabbitClient(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		log.Info("RabbitMQ connected")

		a.Publisher = messaging.NewEventPublisher(rabbit)
		em = manager.NewEventManager(rabbit, log)
		broker = em.Connected
		a.Workers = em

		handler := alerting.NewHandler(db.Alerts, a.Cache, log)
		if err := em.Subscribe(manager.Subscription{
			Queue:    cfg.RabbitMQ.AlertsQueue,
			Patterns: []string{"#"},
			Handler:  handler.HandleDelivery,
			Workers:  cfg.Workers,
		}); err != nil {
			return fmt.Errorf("subscribe alerts queue: %w", err)
		}
	} else {
		log.Warn("RabbitMQ not configured, events will be dropped")
	}

	a.Readiness = readiness.NewRunner(log, readiness.DefaultChecks(db.DB, broker)...)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      a.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting API server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if em != nil {
		g.Go(func() error {
			em.MonitorQueueDepth(gctx, 10*time.Second)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done() // Wait for interrupt signal or a failed component
		log.Info("Shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown error", zap.Error(err))
		}
		if em != nil {
			em.ShutdownAll()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Graceful shutdown complete")
	return nil
}
