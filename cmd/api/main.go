package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/srgjo27/livestock_booking/internal/adapter/events"
	"github.com/srgjo27/livestock_booking/internal/adapter/gateway/paystack"
	"github.com/srgjo27/livestock_booking/internal/adapter/handler"
	"github.com/srgjo27/livestock_booking/internal/adapter/lock"
	"github.com/srgjo27/livestock_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/livestock_booking/internal/core/services"
	"github.com/srgjo27/livestock_booking/internal/platform/config"
	"github.com/srgjo27/livestock_booking/internal/platform/database"
	"github.com/srgjo27/livestock_booking/internal/platform/logger"
)

const consumerGroupPrefix = "livestock-booking."

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := config.LoadDotEnv(".env"); err != nil {
		boot.Warn().Err(err).Msg("failed to read .env, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}
	log.Info().Msg("server exiting")
}

func run(ctx context.Context, cfg config.App, log zerolog.Logger) error {
	db, err := database.NewPostgresDB(ctx, cfg.Database(), log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.InitializeSchema(ctx, db, cfg.Overlap()); err != nil {
		return err
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("connecting to redis")
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	log.Info().Msg("redis connected")

	wlogger := logger.NewWatermillAdapter(log)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, wlogger)
	if err != nil {
		return err
	}

	eventBus, err := events.NewEventBus(publisher, wlogger)
	if err != nil {
		return err
	}
	eventPublisher := events.NewPublisher(eventBus)

	bookingRepo := postgres.NewBookingRepository(db)
	propertyRepo := postgres.NewPropertyRepository(db)

	checker := services.NewConflictChecker(bookingRepo, cfg.Overlap())
	locker := lock.NewRedisLocker(redisClient)
	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.GatewayTimeout)

	bookingService := services.NewBookingService(bookingRepo, propertyRepo, checker, locker, cfg.BookingLockTTL, log)
	reconciler := services.NewReconciler(bookingRepo, eventPublisher, log)
	paymentService := services.NewPaymentService(bookingService, gateway, reconciler, eventPublisher, cfg.FrontendURL, log)
	sweeper := services.NewSweeper(bookingRepo, cfg.SweepInterval, cfg.PendingBookingTTL, log)

	router, err := events.NewRouter(
		newSubscriberConstructor(redisClient, wlogger),
		publisher,
		reconciler,
		events.DefaultRetryConfig(),
		wlogger,
		log,
	)
	if err != nil {
		return err
	}

	srv := handler.NewServer(handler.Config{
		Addr:          cfg.HTTPAddr,
		JWTSecret:     cfg.JWTSecret,
		WebhookSecret: cfg.PaystackSecretKey,
		FrontendURL:   cfg.FrontendURL,
	}, bookingService, paymentService, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msg("starting event router")
		return router.Run(ctx)
	})

	g.Go(func() error {
		select {
		case <-router.Running():
		case <-ctx.Done():
			return nil
		}

		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		return srv.Start()
	})

	g.Go(func() error {
		return sweeper.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return errors.Join(srv.Stop(shutdownCtx), router.Close())
	})

	return g.Wait()
}

func newSubscriberConstructor(client redis.UniversalClient, wlogger watermill.LoggerAdapter) events.SubscriberConstructor {
	return func(handlerName string) (message.Subscriber, error) {
		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: consumerGroupPrefix + handlerName,
		}, wlogger)
	}
}
