package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/metrics"
)

// Типы событий жизненного цикла заказа.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderItemAdded     = "order.item_added"
	EventOrderItemRemoved   = "order.item_removed"
	EventOrderDeleted       = "order.deleted"
)

const (
	orderIDPrefix = "ORD-"

	saveMaxRetries    = 3
	saveRetryBaseWait = 10 * time.Millisecond
)

// PlaceItem описывает позицию в запросе на размещение заказа.
type PlaceItem struct {
	ProductID int64
	Qty       int32
}

// PlaceRequest описывает запрос на размещение заказа.
type PlaceRequest struct {
	CustomerName string
	Email        string
	OrderDate    time.Time
	Items        []PlaceItem
}

// Service реализует сценарии работы с заказами поверх репозитория и каталога.
type Service struct {
	orders   domain.OrderRepository
	catalog  domain.ProductCatalog
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
}

// NewService создаёт рабочий экземпляр сервиса заказов.
func NewService(
	orders domain.OrderRepository,
	catalog domain.ProductCatalog,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		orders:   orders,
		catalog:  catalog,
		outbox:   outbox,
		timeline: timeline,
		logger:   logger,
		metrics:  metrics.NewOrderMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	orders domain.OrderRepository,
	catalog domain.ProductCatalog,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	svc := NewService(orders, catalog, outbox, timeline, logger)
	svc.metrics = nil
	return svc
}

// PlaceOrder размещает заказ: резолвит товары через каталог, фиксирует цены
// позиций и сохраняет агрегат целиком. OrderID назначается сервисом,
// уникальность гарантирует хранилище.
func (s *Service) PlaceOrder(req PlaceRequest) (domain.Order, error) {
	start := time.Now()

	order, err := s.placeOrder(req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordPlaceFailed()
		}
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordPlaceDuration(time.Since(start))
		total, _ := order.Total().Float64()
		s.metrics.RecordOrderTotal(total)
	}

	return order, nil
}

func (s *Service) placeOrder(req PlaceRequest) (domain.Order, error) {
	order, err := domain.NewOrder(req.CustomerName, req.Email, req.OrderDate)
	if err != nil {
		return domain.Order{}, err
	}

	for _, reqItem := range req.Items {
		product, err := s.catalog.FindProductByID(reqItem.ProductID)
		if err != nil {
			s.logger.WithError(err).WithField("product_id", reqItem.ProductID).Warn("product lookup failed")
			return domain.Order{}, err
		}

		item, err := domain.NewOrderItem(product, reqItem.Qty, product.UnitPrice)
		if err != nil {
			return domain.Order{}, err
		}
		if err := order.AddItem(item); err != nil {
			return domain.Order{}, err
		}
	}

	order.OrderID = orderIDPrefix + uuid.NewString()

	created, err := s.orders.Create(order)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.OrderID).Error("failed to persist order")
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": created.OrderID,
		"items":    len(created.Items),
		"total":    created.Total().String(),
	}).Info("order placed")

	s.emitEvent(&created, EventOrderPlaced, map[string]any{
		"customer_name": created.CustomerName,
		"status":        string(created.Status),
		"total":         created.Total().String(),
		"items_count":   len(created.Items),
	})

	return created, nil
}

// GetOrder возвращает заказ по бизнес-идентификатору.
func (s *Service) GetOrder(orderID string) (domain.Order, error) {
	return s.orders.Get(orderID)
}

// GetOrderByItemID возвращает заказ-владелец по идентификатору позиции.
func (s *Service) GetOrderByItemID(itemID int64) (domain.Order, error) {
	return s.orders.GetByItemID(itemID)
}

// ListOrders возвращает до limit последних заказов.
func (s *Service) ListOrders(limit int) ([]domain.Order, error) {
	return s.orders.List(limit)
}

// UpdateStatus переводит заказ в новый статус. Переходы не валидируются:
// допустимость статуса определяет вызывающая сторона.
func (s *Service) UpdateStatus(orderID string, status domain.OrderStatus) (domain.Order, error) {
	saved, err := s.saveWithRetry(orderID, func(order *domain.Order) error {
		order.SetStatus(status)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(status))
	}
	s.emitEvent(&saved, EventOrderStatusChanged, map[string]any{
		"status": string(status),
	})

	return saved, nil
}

// AddItem добавляет позицию в существующий заказ по текущей цене каталога.
func (s *Service) AddItem(orderID string, productID int64, qty int32) (domain.Order, error) {
	product, err := s.catalog.FindProductByID(productID)
	if err != nil {
		return domain.Order{}, err
	}

	saved, err := s.saveWithRetry(orderID, func(order *domain.Order) error {
		item, err := domain.NewOrderItem(product, qty, product.UnitPrice)
		if err != nil {
			return err
		}
		return order.AddItem(item)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.emitEvent(&saved, EventOrderItemAdded, map[string]any{
		"product_id": productID,
		"qty":        qty,
		"total":      saved.Total().String(),
	})
	return saved, nil
}

// RemoveItem удаляет позицию заказа. Отсутствующая позиция — ошибка,
// а не no-op: вызывающая сторона должна узнать о рассинхронизации.
func (s *Service) RemoveItem(orderID string, itemID int64) (domain.Order, error) {
	saved, err := s.saveWithRetry(orderID, func(order *domain.Order) error {
		return order.RemoveItem(itemID)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.emitEvent(&saved, EventOrderItemRemoved, map[string]any{
		"item_id": itemID,
		"total":   saved.Total().String(),
	})
	return saved, nil
}

// DeleteOrder удаляет заказ вместе с позициями.
func (s *Service) DeleteOrder(orderID string) error {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return err
	}

	if err := s.orders.Delete(orderID); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderDeleted()
	}
	s.emitEvent(&order, EventOrderDeleted, map[string]any{
		"customer_name": order.CustomerName,
	})

	s.logger.WithField("order_id", orderID).Info("order deleted")
	return nil
}

// Timeline возвращает события жизненного цикла заказа.
func (s *Service) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.orders.Get(orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(orderID)
}

// saveWithRetry применяет мутацию и сохраняет заказ, повторяя попытку
// при конфликте версий: перечитывает свежую копию и накатывает мутацию заново.
func (s *Service) saveWithRetry(orderID string, mutate func(*domain.Order) error) (domain.Order, error) {
	for attempt := 0; ; attempt++ {
		order, err := s.orders.Get(orderID)
		if err != nil {
			return domain.Order{}, err
		}

		if err := mutate(&order); err != nil {
			return domain.Order{}, err
		}

		saved, err := s.orders.Save(order)
		if err == nil {
			return saved, nil
		}
		if !domain.IsVersionConflict(err) || attempt >= saveMaxRetries-1 {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": orderID,
				"attempt":  attempt + 1,
			}).Error("failed to persist order")
			return domain.Order{}, err
		}

		s.logger.WithFields(log.Fields{
			"order_id": orderID,
			"attempt":  attempt + 1,
		}).Warn("version conflict detected, retrying")
		time.Sleep(saveRetryBaseWait * time.Duration(1<<uint(attempt)))
	}
}

// emitEvent кладёт событие в outbox и дублирует его в timeline.
func (s *Service) emitEvent(order *domain.Order, eventType string, payload map[string]any) {
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["order_id"] = order.OrderID
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.OrderID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	if s.outbox != nil {
		msg := domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   order.OrderID,
			EventType:     eventType,
			Payload:       data,
		}
		if _, err := s.outbox.Enqueue(msg); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.OrderID,
				"event":    eventType,
			}).Error("enqueue event failed")
		} else if s.metrics != nil {
			s.metrics.RecordOutboxEvent()
		}
	}

	reason := ""
	if status, ok := payload["status"].(string); ok {
		reason = status
	}
	s.appendTimeline(order, eventType, reason)
}

func (s *Service) appendTimeline(order *domain.Order, eventType, reason string) {
	if s.timeline == nil {
		return
	}

	event := domain.TimelineEvent{
		OrderID:  order.OrderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.OrderID,
			"event":    eventType,
		}).Warn("append timeline event failed")
	} else if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}
