package catalog

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// MockCatalog — конфигурируемая заглушка ProductCatalog для тестов
// и для запуска сервиса без внешнего каталога.
type MockCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product

	FindErr error
	ListErr error

	FindCalls int
	ListCalls int
}

// NewMockCatalog возвращает пустой каталог-заглушку.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{products: make(map[int64]domain.Product)}
}

// Seed добавляет или заменяет товары в каталоге.
func (m *MockCatalog) Seed(products ...domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, product := range products {
		m.products[product.ID] = product
	}
}

// FindProductByID возвращает товар из настроенного набора или ErrProductNotFound.
func (m *MockCatalog) FindProductByID(id int64) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindCalls++
	if m.FindErr != nil {
		return domain.Product{}, m.FindErr
	}

	product, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// ListProducts возвращает все товары каталога в порядке возрастания id.
func (m *MockCatalog) ListProducts() ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	products := make([]domain.Product, 0, len(m.products))
	for _, product := range m.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	return products, nil
}

var _ domain.ProductCatalog = (*MockCatalog)(nil)
