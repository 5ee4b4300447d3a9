package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/cache"
	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const (
	defaultCacheTTL = 10 * time.Minute
	cacheOpTimeout  = 2 * time.Second
)

// CachedCatalog — read-through декоратор над ProductCatalog.
// Ошибки кэша не фатальны: при недоступном redis работаем напрямую с каталогом.
type CachedCatalog struct {
	next   domain.ProductCatalog
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Entry
}

// CachedOption настраивает CachedCatalog.
type CachedOption func(*CachedCatalog)

// WithCacheTTL задаёт время жизни записей кэша.
func WithCacheTTL(ttl time.Duration) CachedOption {
	return func(c *CachedCatalog) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger задаёт логгер декоратора.
func WithCacheLogger(logger *log.Entry) CachedOption {
	return func(c *CachedCatalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedCatalog оборачивает каталог read-through кэшем.
func NewCachedCatalog(next domain.ProductCatalog, cch cache.Cache, opts ...CachedOption) *CachedCatalog {
	c := &CachedCatalog{
		next:   next,
		cache:  cch,
		ttl:    defaultCacheTTL,
		logger: log.WithField("component", "catalog_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindProductByID сначала смотрит в кэш, при промахе идёт в каталог
// и кладёт результат обратно.
func (c *CachedCatalog) FindProductByID(id int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	key := c.cache.GenerateKey("product", strconv.FormatInt(id, 10))

	raw, err := c.cache.Get(ctx, key)
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(raw), &product); err == nil {
			return product, nil
		}
		c.logger.WithField("key", key).Warn("повреждённая запись кэша, читаем каталог")
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.WithError(err).Warn("кэш недоступен, читаем каталог")
	}

	product, err := c.next.FindProductByID(id)
	if err != nil {
		return domain.Product{}, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.WithError(err).Warn("не удалось записать товар в кэш")
		}
	}

	return product, nil
}

// ListProducts не кэшируется: листинг используется редко и должен быть свежим.
func (c *CachedCatalog) ListProducts() ([]domain.Product, error) {
	return c.next.ListProducts()
}

// Invalidate удаляет товар из кэша.
func (c *CachedCatalog) Invalidate(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	key := c.cache.GenerateKey("product", strconv.FormatInt(id, 10))
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.WithError(err).Warn("не удалось инвалидировать запись кэша")
	}
}

var _ domain.ProductCatalog = (*CachedCatalog)(nil)
