// Package app собирает компоненты сервиса по конфигурации и управляет их жизненным циклом.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Dhoini/personalized-gospels/config"
	grpcapi "github.com/Dhoini/personalized-gospels/internal/api/grpc"
	"github.com/Dhoini/personalized-gospels/internal/api/rest"
	"github.com/Dhoini/personalized-gospels/internal/fulfillment"
	"github.com/Dhoini/personalized-gospels/internal/integration/lulu"
	"github.com/Dhoini/personalized-gospels/internal/integration/stripe"
	"github.com/Dhoini/personalized-gospels/internal/kafka"
	"github.com/Dhoini/personalized-gospels/internal/kafka/producer"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/internal/repository"
	"github.com/Dhoini/personalized-gospels/internal/repository/postgres"
	"github.com/Dhoini/personalized-gospels/internal/service"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

const metricsInterval = 15 * time.Second

// App представляет собой контейнер для всех компонентов приложения
type App struct {
	Router *gin.Engine

	cfg     *config.Config
	log     *logger.Logger
	server  *rest.Server
	runners []func(ctx context.Context)
	closers []func() error
}

// New создает и связывает компоненты приложения.
// Без DSN, адреса Redis или брокеров используются реализации в памяти.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(registry, log)

	orders, history, err := a.initStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	dedup, err := a.initDeduplicator(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var kafkaCfg *kafka.Config
	if cfg.Kafka.Enabled() {
		kafkaCfg = kafka.NewConfig(cfg.Kafka.Brokers, cfg.Kafka.FulfillmentTopic, cfg.Kafka.ConsumerGroup)
		if err := kafka.EnsureKafkaTopics(kafkaCfg, log); err != nil {
			log.Warnw("Failed to ensure Kafka topics, relying on broker auto-creation", "error", err)
		}
	}

	events, err := a.initEventPublisher(kafkaCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	printer := lulu.NewClient(lulu.Config{
		APIURL:       cfg.Lulu.APIURL,
		ClientID:     cfg.Lulu.ClientID,
		ClientSecret: cfg.Lulu.ClientSecret,
		Timeout:      cfg.Lulu.Timeout,
	}, log)
	router := fulfillment.NewRouter(printer, fulfillment.NewDocumentLinker(cfg.Storefront.PublicURL), cfg.Lulu.ContactEmail, storeMetrics, log)
	dispatcher := fulfillment.NewDispatcher(router, orders, events, storeMetrics, log)

	queue, depth, err := a.initQueue(kafkaCfg, dispatcher.Handle)
	if err != nil {
		a.Close()
		return nil, err
	}

	queueMetrics := metrics.NewQueueMetrics(registry, depth, log)
	a.runners = append(a.runners, func(context.Context) { queueMetrics.StartRecording(metricsInterval) })
	a.onClose(func() error {
		queueMetrics.Stop()
		return nil
	})

	stripeClient := stripe.NewClient(stripe.Config{
		APIKey:        cfg.Stripe.APIKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}, log)

	a.Router = rest.SetupRouter(rest.Services{
		Checkout: service.NewCheckoutService(stripeClient, orders, storeMetrics, cfg.Storefront.BaseURL, log),
		Webhook:  service.NewWebhookService(stripeClient, dedup, orders, history, queue, events, storeMetrics, log),
		Books:    service.NewBookService(storeMetrics, log),
		Admin:    service.NewAdminService(orders, history, queue, storeMetrics, log),
	}, registry, cfg.Auth.JWTSecret, log)
	a.server = rest.NewServer(a.Router, cfg.Server, log)

	if err := a.initGRPC(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initGRPC() error {
	if a.cfg.GRPC.Port == "" {
		return nil
	}

	srv, err := grpcapi.NewServer(a.cfg.GRPC, a.log)
	if err != nil {
		return fmt.Errorf("create grpc server: %w", err)
	}
	a.runners = append(a.runners, func(context.Context) {
		go func() {
			if err := srv.Start(); err != nil {
				a.log.Errorw("gRPC server stopped with error", "error", err)
			}
		}()
	})
	a.onClose(func() error {
		srv.Stop()
		return nil
	})
	return nil
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) initStorage(ctx context.Context) (repository.OrderRepository, repository.WebhookEventLog, error) {
	if a.cfg.Database.DSN == "" {
		a.log.Warn("Database DSN is not set, orders are kept in memory")
		return repository.NewInMemoryOrderRepository(a.log), repository.NewInMemoryWebhookEventLog(), nil
	}

	pool, err := postgres.NewConnection(ctx, a.cfg.Database.DSN, a.cfg.Database.MaxConns, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	a.onClose(func() error {
		pool.Close()
		return nil
	})

	if a.cfg.Database.MigrateOnStart {
		if err := postgres.RunMigrations(pool, a.log); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	history := postgres.NewWebhookEventLog(pool, a.log)
	a.onClose(history.Close)
	return postgres.NewPostgresOrderRepository(pool, a.log), history, nil
}

func (a *App) initDeduplicator(ctx context.Context) (repository.EventDeduplicator, error) {
	ttl := a.cfg.Redis.EventTTL
	if ttl <= 0 {
		ttl = repository.DefaultEventTTL
	}

	if a.cfg.Redis.Addr == "" {
		a.log.Warn("Redis address is not set, webhook events are deduplicated in memory")
		return repository.NewInMemoryEventDeduplicator(ttl), nil
	}

	dedup, err := repository.NewRedisEventDeduplicator(ctx, &redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}, ttl, a.log)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.onClose(dedup.Close)
	return dedup, nil
}

func (a *App) initEventPublisher(kafkaCfg *kafka.Config) (fulfillment.EventPublisher, error) {
	if kafkaCfg == nil {
		a.log.Warn("Kafka brokers are not set, order events are only logged")
		return fulfillment.LogPublisher{Log: a.log}, nil
	}

	syncProducer, err := sarama.NewSyncProducer(kafkaCfg.Brokers, kafka.NewSaramaConfig(kafkaCfg))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	events := producer.NewKafkaOrderEventProducer(syncProducer, a.log)
	a.onClose(events.Close)
	return events, nil
}

func (a *App) initQueue(kafkaCfg *kafka.Config, handler fulfillment.Handler) (fulfillment.Queue, metrics.DepthFunc, error) {
	if kafkaCfg == nil {
		pool := fulfillment.NewWorkerPool(a.cfg.Fulfillment.Workers, a.cfg.Fulfillment.QueueSize, handler, a.log)
		a.runners = append(a.runners, pool.Start)
		a.onClose(func() error {
			pool.Stop()
			return nil
		})
		return pool, pool.Depth, nil
	}

	queue, err := kafka.NewFulfillmentQueue(kafkaCfg, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("create fulfillment queue: %w", err)
	}
	a.onClose(queue.Close)

	consumer := kafka.NewFulfillmentConsumer(kafkaCfg, handler, a.log)
	a.runners = append(a.runners, func(ctx context.Context) {
		go func() {
			if err := consumer.Run(ctx); err != nil {
				a.log.Errorw("Fulfillment consumer stopped with error", "error", err)
			}
		}()
	})
	a.onClose(consumer.Close)
	return queue, nil, nil
}

// Start запускает фоновые обработчики и HTTP сервер.
// Ошибка сервера приходит в возвращаемый канал.
func (a *App) Start(ctx context.Context) <-chan error {
	for _, run := range a.runners {
		run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()
	return errCh
}

// Shutdown останавливает HTTP сервер и освобождает ресурсы
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
		}
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close освобождает ресурсы в порядке, обратном созданию
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
