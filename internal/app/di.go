// Package app wires configuration into the components the commands run. Every
// component is built on first use and shared afterwards.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/piiguard/internal/config"
	cryptoService "github.com/allisson/piiguard/internal/crypto/service"
	"github.com/allisson/piiguard/internal/database"
	"github.com/allisson/piiguard/internal/http"
	"github.com/allisson/piiguard/internal/metrics"
	outboxUsecase "github.com/allisson/piiguard/internal/outbox/usecase"
	"github.com/allisson/piiguard/internal/pii"
	userHTTP "github.com/allisson/piiguard/internal/user/http"
	userRepository "github.com/allisson/piiguard/internal/user/repository"
	userUsecase "github.com/allisson/piiguard/internal/user/usecase"
)

// lazy holds a component built at most once. A failed build is remembered and
// returned to every later caller.
type lazy[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
	err  error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.val, l.err = build()
		l.done = true
	}
	return l.val, l.err
}

func (l *lazy[T]) must(build func() T) T {
	v, _ := l.get(func() (T, error) { return build(), nil })
	return v
}

// peek returns the component if it was built successfully, without building it.
func (l *lazy[T]) peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.val, l.done && l.err == nil
}

// Container assembles the application. Accessors are safe for concurrent use.
type Container struct {
	config *config.Config

	logger          lazy[*slog.Logger]
	db              lazy[*sql.DB]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]
	txManager       lazy[database.TxManager]

	kmsService  lazy[cryptoService.KMSService]
	aeadManager lazy[cryptoService.AEADManager]
	keyProvider lazy[*cryptoService.KeyProvider]
	codec       lazy[cryptoService.Codec]
	hashIndex   lazy[cryptoService.HashIndex]
	protector   lazy[*pii.Protector]

	userRepo   lazy[*userRepository.UserRepository]
	outboxRepo lazy[outboxUsecase.OutboxEventRepository]

	userUseCase   lazy[userUsecase.UseCase]
	legacyUseCase lazy[userUsecase.LegacyUseCase]
	outboxUseCase lazy[outboxUsecase.UseCase]
	userHandler   lazy[*userHTTP.UserHandler]

	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]
}

// NewContainer returns an empty container; nothing is connected until asked for.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger writing to stdout at LOG_LEVEL. Unknown levels
// fall back to info.
func (c *Container) Logger() *slog.Logger {
	return c.logger.must(func() *slog.Logger {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.config.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	})
}

// DB returns the connection pool, pinged on creation.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(func() (*sql.DB, error) {
		db, err := database.Connect(context.Background(), database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	})
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the operation recorder, a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
		return businessMetrics, nil
	})
}

// TxManager returns the transaction manager over DB.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// HTTPServer returns the API server with its router configured. ctx bounds the
// background goroutines the router starts.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return c.httpServer.get(func() (*http.Server, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}

		userHandler, err := c.UserHandler()
		if err != nil {
			return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}

		server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
		server.SetupRouter(ctx, c.config, userHandler, provider)
		return server, nil
	})
}

// MetricsServer returns the Prometheus server. It fails when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
		if provider == nil {
			return nil, errors.New("metrics server requested with metrics disabled")
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown stops the servers, flushes metrics and closes the database, in that
// order. Components never built are skipped.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if server, ok := c.httpServer.peek(); ok {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if server, ok := c.metricsServer.peek(); ok {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if provider, ok := c.metricsProvider.peek(); ok && provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}
	if db, ok := c.db.peek(); ok {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}
