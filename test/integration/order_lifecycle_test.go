package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecom/internal/service/order"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
)

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказов.
type OrderLifecycleTestSuite struct {
	suite.Suite
	service  *order.Service
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	catalog  *catalog.MockCatalog
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.orders = memory.NewOrderRepository()
	suite.outbox = memory.NewOutboxRepository()
	suite.timeline = memory.NewTimelineRepository()

	suite.catalog = catalog.NewMockCatalog()
	suite.catalog.Seed(
		domain.Product{ID: 7, Name: "Mouse", UnitPrice: decimal.RequireFromString("9.99"), StockQty: 100},
		domain.Product{ID: 8, Name: "Keyboard", UnitPrice: decimal.RequireFromString("49.90"), StockQty: 50},
	)

	suite.service = order.NewServiceWithoutMetrics(
		suite.orders,
		suite.catalog,
		suite.outbox,
		suite.timeline,
		logger,
	)
}

func (suite *OrderLifecycleTestSuite) placeSampleOrder() domain.Order {
	placed, err := suite.service.PlaceOrder(order.PlaceRequest{
		CustomerName: "Alice",
		Email:        "alice@example.com",
		OrderDate:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Items: []order.PlaceItem{
			{ProductID: 7, Qty: 3},
		},
	})
	require.NoError(suite.T(), err)
	return placed
}

func (suite *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	t := suite.T()

	// 1. Размещаем заказ
	placed := suite.placeSampleOrder()
	require.NotEmpty(t, placed.OrderID)
	require.Equal(t, domain.OrderStatusPending, placed.Status)
	require.Len(t, placed.Items, 1)
	require.True(t, placed.Total().Equal(decimal.RequireFromString("29.97")),
		"expected total 29.97, got %s", placed.Total())

	// 2. Добавляем вторую позицию
	withKeyboard, err := suite.service.AddItem(placed.OrderID, 8, 1)
	require.NoError(t, err)
	require.Len(t, withKeyboard.Items, 2)
	require.True(t, withKeyboard.Total().Equal(decimal.RequireFromString("79.87")),
		"expected total 79.87, got %s", withKeyboard.Total())

	// 3. Меняем статус до доставки
	shipped, err := suite.service.UpdateStatus(placed.OrderID, domain.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, shipped.Status)

	delivered, err := suite.service.UpdateStatus(placed.OrderID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusDelivered, delivered.Status)
	require.Greater(t, delivered.Version, shipped.Version)

	// 4. Таймлайн отражает все шаги
	events, err := suite.service.Timeline(placed.OrderID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	require.Equal(t, "order.placed", events[0].Type)
	require.Equal(t, "order.item_added", events[1].Type)
	require.Equal(t, "order.status_changed", events[2].Type)
	require.Equal(t, "SHIPPED", events[2].Reason)
	require.Equal(t, "order.status_changed", events[3].Type)
	require.Equal(t, "DELIVERED", events[3].Reason)

	// 5. Outbox накопил события для публикации
	pending, err := suite.outbox.PullPending(0)
	require.NoError(t, err)
	require.Len(t, pending, 4)
}

func (suite *OrderLifecycleTestSuite) TestPriceFixedAtPlacement() {
	t := suite.T()

	placed := suite.placeSampleOrder()

	// Цена в каталоге меняется после размещения заказа.
	suite.catalog.Seed(domain.Product{ID: 7, Name: "Mouse", UnitPrice: decimal.RequireFromString("19.99"), StockQty: 100})

	reloaded, err := suite.service.GetOrder(placed.OrderID)
	require.NoError(t, err)
	require.True(t, reloaded.Total().Equal(decimal.RequireFromString("29.97")),
		"expected total to stay 29.97, got %s", reloaded.Total())
}

func (suite *OrderLifecycleTestSuite) TestItemBackReference() {
	t := suite.T()

	placed := suite.placeSampleOrder()
	require.NotZero(t, placed.Items[0].ID)

	owner, err := suite.service.GetOrderByItemID(placed.Items[0].ID)
	require.NoError(t, err)
	require.Equal(t, placed.OrderID, owner.OrderID)
}

func (suite *OrderLifecycleTestSuite) TestRemoveItem() {
	t := suite.T()

	placed := suite.placeSampleOrder()
	withKeyboard, err := suite.service.AddItem(placed.OrderID, 8, 1)
	require.NoError(t, err)

	var keyboardItemID int64
	for _, item := range withKeyboard.Items {
		if item.ProductID == 8 {
			keyboardItemID = item.ID
		}
	}
	require.NotZero(t, keyboardItemID)

	trimmed, err := suite.service.RemoveItem(placed.OrderID, keyboardItemID)
	require.NoError(t, err)
	require.Len(t, trimmed.Items, 1)

	_, err = suite.service.RemoveItem(placed.OrderID, keyboardItemID)
	require.True(t, errors.Is(err, domain.ErrItemNotFound), "expected ErrItemNotFound, got %v", err)
}

func (suite *OrderLifecycleTestSuite) TestDeleteOrderCascades() {
	t := suite.T()

	placed := suite.placeSampleOrder()
	itemID := placed.Items[0].ID

	require.NoError(t, suite.service.DeleteOrder(placed.OrderID))

	_, err := suite.service.GetOrder(placed.OrderID)
	require.True(t, errors.Is(err, domain.ErrOrderNotFound), "expected ErrOrderNotFound, got %v", err)

	_, err = suite.service.GetOrderByItemID(itemID)
	require.True(t, errors.Is(err, domain.ErrOrderNotFound) || errors.Is(err, domain.ErrItemNotFound),
		"expected not found after cascade delete, got %v", err)

	err = suite.service.DeleteOrder(placed.OrderID)
	require.True(t, errors.Is(err, domain.ErrOrderNotFound), "expected ErrOrderNotFound, got %v", err)
}

func (suite *OrderLifecycleTestSuite) TestValidationErrors() {
	t := suite.T()

	_, err := suite.service.PlaceOrder(order.PlaceRequest{
		Email:     "alice@example.com",
		OrderDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.True(t, errors.Is(err, domain.ErrCustomerNameRequired), "expected ErrCustomerNameRequired, got %v", err)

	_, err = suite.service.PlaceOrder(order.PlaceRequest{
		CustomerName: "Alice",
		Email:        "alice@example.com",
		OrderDate:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Items:        []order.PlaceItem{{ProductID: 999, Qty: 1}},
	})
	require.True(t, errors.Is(err, domain.ErrProductNotFound), "expected ErrProductNotFound, got %v", err)
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
