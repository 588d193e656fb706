package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/config"
	"github.com/xavierca1/lead-pipeline/internal/infra/cache"
	"github.com/xavierca1/lead-pipeline/internal/infra/database"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/handlers"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/middleware"
	"github.com/xavierca1/lead-pipeline/internal/infra/logger"
	"github.com/xavierca1/lead-pipeline/internal/infra/mail"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
	"github.com/xavierca1/lead-pipeline/internal/infra/worker"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "lead-pipeline")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.SessionJWTSecret == "" {
		log.Fatal("SESSION_JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Banco
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	leadRepo := database.NewLeadRepository(db)
	profileRepo := database.NewProfileRepository(db)

	health := handlers.NewHealthHandler(db, nil, nil)

	// 2. Cache (opcional)
	var listingCache usecase.LeadListingCache
	var sweepLock worker.SweepLock
	var directory usecase.AddressDirectory
	var recipients mail.RecipientLookup
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewClient(cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, listings will hit the store", zap.Error(err))
		} else {
			defer redisClient.Close()
			listingCache = cache.NewLeadListingCache(redisClient, cfg.LeadsCacheTTL)
			sweepLock = cache.NewLocker(redisClient)
			addresses := cache.NewAddressBook(redisClient, 0)
			directory = addresses
			recipients = addresses
			health.Cache = handlers.PingFunc(redisClient.Ping)
		}
	}

	// 3. Fila + worker de notificação (opcional)
	var producer usecase.QueueProducerInterface
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, lead events will not be published", zap.Error(err))
		} else {
			defer rabbit.Close()
			producer = queue.NewProducer(rabbit.Ch)
			health.RabbitMQ = rabbit
			startNotifier(ctx, cfg, rabbit, recipients, log)
		}
	}

	// 4. Workers
	slaMonitor := worker.NewSLAMonitor(cfg.SLATickInterval, log)
	go slaMonitor.Start(ctx)

	sweeper := worker.NewAutoLostSweeper(db, cfg.AutoLostSchedule, cfg.AutoLostGrace, listingCache, producer, log).
		WithLock(sweepLock)
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start auto-lost sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	// 5. UseCases
	listUC := usecase.NewListLeadsUseCase(leadRepo, profileRepo, listingCache, slaMonitor, cfg.LeadsCacheStaleAfter, log)
	createUC := usecase.NewCreateLeadUseCase(leadRepo, profileRepo, listingCache, producer, log)
	updateUC := usecase.NewUpdateLeadUseCase(leadRepo, profileRepo, listingCache, producer, log)
	resolveUC := usecase.NewResolveProfileUseCase(profileRepo, directory, log)

	// 6. Handlers
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()

	router := newRouter(cfg, routes{
		health: health,
		leads:  handlers.NewLeadHandler(createUC, updateUC, listUC, log),
		views: handlers.NewViewHandler(
			usecase.NewDashboardUseCase(listUC),
			usecase.NewTeamUseCase(leadRepo, profileRepo),
			usecase.NewReportsUseCase(leadRepo, profileRepo),
			log,
		),
		session: middleware.NewSession(cfg.SessionJWTSecret, resolveUC, log),
		limiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("lead pipeline API listening", zap.String("port", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// startNotifier runs the email worker when SMTP is configured.
func startNotifier(ctx context.Context, cfg *config.Config, rabbit *queue.RabbitMQ, recipients mail.RecipientLookup, log *zap.Logger) {
	if cfg.SMTPHost == "" {
		log.Info("SMTP_HOST not set, lead notifications disabled")
		return
	}

	sender, err := mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.NotifyFrom, cfg.NotifyTo, recipients)
	if err != nil {
		log.Error("failed to build email sender", zap.Error(err))
		return
	}

	w := queue.NewWorker(rabbit.Ch, sender, log)
	go func() {
		if err := w.Start(ctx, queue.QueueName); err != nil {
			log.Error("notification worker stopped", zap.Error(err))
		}
	}()
}
