// Package ravetracker собирает основное HTTP-приложение: хранилище,
// кеш, брокер уведомлений, сервисы и маршруты.
package ravetracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/rave-tracker/internal/cache"
	"github.com/magabrotheeeer/rave-tracker/internal/config"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/rave-tracker/internal/migrations"
	"github.com/magabrotheeeer/rave-tracker/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/rave-tracker/internal/services/auth"
	eventservice "github.com/magabrotheeeer/rave-tracker/internal/services/event"
	reportservice "github.com/magabrotheeeer/rave-tracker/internal/services/report"
	subscriptionservice "github.com/magabrotheeeer/rave-tracker/internal/services/subscription"
	supportservice "github.com/magabrotheeeer/rave-tracker/internal/services/support"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// App инкапсулирует сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	rabbit *amqp.Connection
}

// New создает приложение: подключает Postgres, применяет миграции,
// поднимает Redis и RabbitMQ, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, db, jwtMaker, logger,
		cfg.MaxCodesPerUser, cfg.DefaultCodeTTL)
	eventService := eventservice.NewEventService(db, db, cacheRedis, logger)
	subscriptionService := subscriptionservice.NewSubscriptionService(db, cacheRedis, logger)
	reportService := reportservice.NewReportService(db, publisher, logger)
	supportService := supportservice.NewSupportService(db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker,
		authService, eventService, subscriptionService, reportService, supportService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		rabbit: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.rabbit.Close(); cerr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
