package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository для
// локальной разработки и тестов. Суррогатные ID назначаются счётчиками,
// уникальность orderId проверяется по индексу в памяти.
type orderRepositoryInMemory struct {
	mu         sync.RWMutex
	byOrderID  map[string]domain.Order
	nextID     int64
	nextItemID int64
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		byOrderID: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ, назначая суррогатные ID заказу и позициям.
func (r *orderRepositoryInMemory) Create(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.OrderID == "" {
		return domain.Order{}, domain.ErrOrderIDTaken
	}
	if _, exists := r.byOrderID[order.OrderID]; exists {
		return domain.Order{}, domain.ErrOrderIDTaken
	}

	r.nextID++
	order.ID = r.nextID
	order.Version = 1

	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		r.nextItemID++
		items[i].ID = r.nextItemID
		items[i].OrderID = order.ID
	}
	order.Items = items

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.byOrderID[order.OrderID] = cloneOrder(order)
	return cloneOrder(order), nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.byOrderID[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// GetByItemID разрешает обратную ссылку позиции на заказ-владелец.
func (r *orderRepositoryInMemory) GetByItemID(itemID int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.byOrderID {
		for _, item := range order.Items {
			if item.ID == itemID {
				return cloneOrder(order), nil
			}
		}
	}
	return domain.Order{}, domain.ErrItemNotFound
}

// List возвращает заказы, новые первыми, ограничивая выборку limit (если > 0).
func (r *orderRepositoryInMemory) List(limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.byOrderID))
	for _, order := range r.byOrderID {
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Save применяет обновления с optimistic locking и заменяет набор позиций.
func (r *orderRepositoryInMemory) Save(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byOrderID[order.OrderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return domain.Order{}, domain.ErrOrderVersionConflict
	}

	order.ID = stored.ID
	order.Version = stored.Version + 1
	order.UpdatedAt = time.Now().UTC()

	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		if items[i].ID == 0 {
			r.nextItemID++
			items[i].ID = r.nextItemID
		}
		items[i].OrderID = order.ID
	}
	order.Items = items

	r.byOrderID[order.OrderID] = cloneOrder(order)
	return cloneOrder(order), nil
}

// Delete удаляет заказ вместе со всеми позициями.
func (r *orderRepositoryInMemory) Delete(orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byOrderID[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.byOrderID, orderID)
	return nil
}

func cloneOrder(order domain.Order) domain.Order {
	clone := order
	clone.Items = make([]domain.OrderItem, len(order.Items))
	copy(clone.Items, order.Items)
	return clone
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
