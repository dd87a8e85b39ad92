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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-intake/internal/config"
	"github.com/ignatzorin/proposal-intake/internal/db"
	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/goroutine"
	httpRouter "github.com/ignatzorin/proposal-intake/internal/http/router"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore/fsstore"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore/pgstore"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore/redisstore"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore/vercelstore"
	"github.com/ignatzorin/proposal-intake/internal/interface/http/forminput"
	"github.com/ignatzorin/proposal-intake/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-intake/internal/logger"
	"github.com/ignatzorin/proposal-intake/internal/metrics"
	"github.com/ignatzorin/proposal-intake/internal/usecase/proposal"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	backend, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подготовить хранилище")
	}
	defer backend.close()

	// Метрики.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)
	store := metrics.InstrumentStore(backend.store, appMetrics)

	// Use cases и хэндлеры.
	proposalHandler := handler.NewProposalHandler(
		forminput.NewDecoder(cfg.MaxBodyBytes),
		proposal.NewStoreProposalUseCase(store),
		proposal.NewLookupProposalUseCase(store),
		appMetrics,
		handler.ProposalHandlerConfig{
			Mode:          handler.ResponseMode(cfg.ResponseMode),
			PublicBaseURL: cfg.PublicBaseURL,
			RedirectURL:   cfg.RedirectURL,
			RedirectDelay: cfg.RedirectDelay,
		},
	)

	handlers := httpRouter.Handlers{
		Proposal: proposalHandler,
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	pinger, _ := backend.store.(repository.Pinger)
	handlers.Health = handler.NewHealthHandler(cfg.StoreBackend, pinger)
	if reader, ok := backend.store.(repository.ObjectReader); ok {
		handlers.Blob = handler.NewBlobHandler(reader)
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGoWithContext(ctx, logger.Log, func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"backend": cfg.StoreBackend,
		"mode":    cfg.ResponseMode,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Fatal("main: сервер завершился с ошибкой")
	}
}

// storeBackend - выбранное хранилище и функция освобождения его ресурсов.
type storeBackend struct {
	store repository.ObjectStore
	close func()
}

// openStore создаёт хранилище по STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (*storeBackend, error) {
	nop := func() {}

	switch cfg.StoreBackend {
	case config.BackendFS:
		store, err := fsstore.New(cfg.StoragePath, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return &storeBackend{store: store, close: nop}, nil

	case config.BackendPostgres:
		// Подключение к базе и миграции.
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, dbConn, os.DirFS(cfg.MigrationsPath)); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		return &storeBackend{
			store: pgstore.New(dbConn, cfg.PublicBaseURL),
			close: func() {
				if err := dbConn.Close(); err != nil {
					logger.Log.WithError(err).Error("main: ошибка закрытия базы")
				}
			},
		}, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis: нет соединения: %w", err)
		}
		return &storeBackend{
			store: redisstore.New(client, cfg.PublicBaseURL),
			close: func() {
				if err := client.Close(); err != nil {
					logger.Log.WithError(err).Error("main: ошибка закрытия redis")
				}
			},
		}, nil

	case config.BackendVercel:
		return &storeBackend{
			store: vercelstore.New(cfg.BlobAPIURL, cfg.BlobToken, cfg.StoreTimeout),
			close: nop,
		}, nil
	}

	return nil, fmt.Errorf("main: неизвестный бэкенд хранилища %q", cfg.StoreBackend)
}
