package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/config"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/db"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/idempotency"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/metrics"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/notify"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/observability"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/publisher"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, config.ServiceName)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("❌ Order service stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Tracing
	if cfg.OtelEndpoint != "" {
		shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
			Endpoint:       cfg.OtelEndpoint,
			AuthHeader:     cfg.OtelAuthHeader,
			ServiceName:    config.ServiceName,
			ServiceVersion: config.ServiceVersion,
		})
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Warn("⚠️ Tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry, "orders")

	// Notification broker
	var (
		emailSender notify.EmailSender
		pushSender  notify.PushSender
	)
	broker, err := newBroker(cfg, logger)
	if err != nil {
		return err
	}
	if broker != nil {
		defer broker.Close()
		pub := publisher.NewNotificationPublisher(broker, logger)
		emailSender, pushSender = pub, pub
	}

	// Audit archive
	var auditSink notify.AuditSink
	if cfg.AuditDatabaseURL != "" {
		database, err := db.NewPostgresDB(ctx, cfg.AuditDatabaseURL, logger)
		if err != nil {
			return err
		}
		defer database.Close()

		auditRepo := db.NewAuditRepository(database)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		auditSink = auditRepo
	}

	// Idempotency keys
	var idem idempotency.Store = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, "orders:idempotency:", cfg.IdempotencyTTL, logger)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		idem = idempotency.NewRedisStore(redisCache)
	}

	// Stores, listeners and services
	products := db.NewProductRepository()
	orders := db.NewOrderRepository()

	audit := notify.NewAuditLogger(auditSink)
	stats := notify.NewStatsCollector()
	bus := notify.NewBus(logger, m)
	bus.Attach(notify.NewEmailNotifier(emailSender, logger))
	bus.Attach(notify.NewPushNotifier(pushSender, logger))
	bus.Attach(audit)
	bus.Attach(stats)

	policy, err := cfg.DiscountPolicy()
	if err != nil {
		return err
	}
	orderSvc := service.NewOrderService(products, orders, bus,
		service.WithDiscountPolicy(policy),
		service.WithLowStockThreshold(cfg.LowStockThreshold),
		service.WithLogger(logger),
	)
	productSvc := service.NewProductService(products, cfg.LowStockThreshold, logger)

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(config.ServiceName,
		handlers.NewProductHandler(productSvc),
		handlers.NewOrderHandler(orderSvc, audit, stats, idem, logger),
		m,
		logger,
	)

	// Service discovery
	if cfg.ConsulAddr != "" {
		consul, err := discovery.NewConsulClient(cfg.ConsulAddr, logger)
		if err != nil {
			return err
		}
		if err := consul.Register(discovery.ServiceConfig{
			Name: config.ServiceName,
			ID:   cfg.ServiceID,
			Port: cfg.Port,
			Tags: []string{"api", "orders", "products"},
		}); err != nil {
			return err
		}
		defer func() {
			if err := consul.Deregister(cfg.ServiceID); err != nil {
				logger.Warn("⚠️ Consul deregistration failed", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("🚀 %s starting on http://localhost:%d", config.ServiceName, cfg.Port),
			zap.String("broker", cfg.Broker),
			zap.Strings("listeners", bus.Listeners()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newBroker(cfg *config.Config, logger *zap.Logger) (messaging.Broker, error) {
	switch cfg.Broker {
	case config.BrokerRabbitMQ:
		return messaging.NewRabbitMQ(cfg.RabbitMQURL, logger)
	case config.BrokerKafka:
		return messaging.NewKafka(cfg.KafkaBrokers, logger)
	default:
		return nil, nil
	}
}
