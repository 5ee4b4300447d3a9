package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/cache"
	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
	"github.com/vladislavdragonenkov/ecom/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Orders      domain.OrderRepository
	Outbox      domain.OutboxRepository
	Timeline    domain.TimelineRepository
	Idempotency domain.IdempotencyRepository
	Catalog     domain.ProductCatalog
	// Store задан только в postgres-режиме.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies собирает хранилища и каталог. Пустой dsn включает
// in-memory режим с демо-каталогом — удобно для разработки и тестов.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN == "" {
		deps.Orders = memory.NewOrderRepository()
		deps.Outbox = memory.NewOutboxRepository()
		deps.Timeline = memory.NewTimelineRepository()
		deps.Idempotency = memory.NewIdempotencyRepository()
		deps.Catalog = demoCatalog()
		logger.Info("using in-memory storage")
	} else {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		deps.Store = store
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		deps.Timeline = postgres.NewTimelineRepository(store)
		deps.Idempotency = postgres.NewIdempotencyRepository(store)
		deps.Catalog = postgres.NewProductRepository(store)
		logger.Info("using postgres storage")
	}

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, "ecom")
		deps.Catalog = catalog.NewCachedCatalog(deps.Catalog, redisCache)
		logger.WithField("addr", cfg.RedisAddr).Info("catalog cache enabled")
	}

	return deps, nil
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close() {
	if d == nil || d.Store == nil {
		return
	}
	if err := d.Store.Close(); err != nil {
		d.Logger.WithError(err).Warn("failed to close postgres store")
	}
}

// demoCatalog наполняет in-memory каталог демонстрационными товарами.
func demoCatalog() domain.ProductCatalog {
	mock := catalog.NewMockCatalog()
	mock.Seed(
		domain.Product{ID: 1, Name: "Mouse", Brand: "Logitech", Category: "peripherals", UnitPrice: decimal.RequireFromString("9.99"), StockQty: 100},
		domain.Product{ID: 2, Name: "Keyboard", Brand: "Keychron", Category: "peripherals", UnitPrice: decimal.RequireFromString("49.90"), StockQty: 50},
		domain.Product{ID: 3, Name: "Monitor", Brand: "Dell", Category: "displays", UnitPrice: decimal.RequireFromString("219.00"), StockQty: 25},
	)
	return mock
}
