package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// helper для создания товара каталога.
func makeProduct(id int64, price string) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      "product",
		UnitPrice: decimal.RequireFromString(price),
		StockQty:  10,
	}
}

// helper для создания базового заказа с одной позицией.
func makeOrder(t *testing.T) domain.Order {
	t.Helper()

	order, err := domain.NewOrder("Alice", "a@x.com", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}

	item, err := domain.NewOrderItem(makeProduct(1, "9.99"), 3, decimal.RequireFromString("9.99"))
	if err != nil {
		t.Fatalf("NewOrderItem: %v", err)
	}
	item.ID = 1

	if err := order.AddItem(item); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	return order
}

func TestNewOrder_Defaults(t *testing.T) {
	order, err := domain.NewOrder("Alice", "a@x.com", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected PENDING status, got %s", order.Status)
	}
	if len(order.Items) != 0 {
		t.Fatalf("expected empty item collection, got %d items", len(order.Items))
	}
	if !order.Total().IsZero() {
		t.Fatalf("expected zero total for empty order, got %s", order.Total())
	}
	if order.ID != 0 || order.OrderID != "" {
		t.Fatal("identifiers must not be assigned before persistence")
	}
}

func TestNewOrder_Validation(t *testing.T) {
	cases := []struct {
		name     string
		customer string
		email    string
		want     error
	}{
		{name: "empty customer", customer: "", email: "a@x.com", want: domain.ErrCustomerNameRequired},
		{name: "empty email", customer: "Alice", email: "", want: domain.ErrEmailRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewOrder(tc.customer, tc.email, time.Now().UTC())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewOrderItem_TotalPrice(t *testing.T) {
	// 3 * 9.99 должно давать ровно 29.97, без дрейфа округления.
	item, err := domain.NewOrderItem(makeProduct(1, "9.99"), 3, decimal.RequireFromString("9.99"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !item.TotalPrice.Equal(decimal.RequireFromString("29.97")) {
		t.Fatalf("expected total 29.97, got %s", item.TotalPrice)
	}
}

func TestNewOrderItem_Validation(t *testing.T) {
	cases := []struct {
		name    string
		product domain.Product
		qty     int32
		price   string
		want    error
	}{
		{name: "zero qty", product: makeProduct(1, "9.99"), qty: 0, price: "9.99", want: domain.ErrItemQtyInvalid},
		{name: "negative qty", product: makeProduct(1, "9.99"), qty: -2, price: "9.99", want: domain.ErrItemQtyInvalid},
		{name: "missing product", product: domain.Product{}, qty: 1, price: "9.99", want: domain.ErrProductRequired},
		{name: "negative price", product: makeProduct(1, "9.99"), qty: 1, price: "-0.01", want: domain.ErrItemPriceInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewOrderItem(tc.product, tc.qty, decimal.RequireFromString(tc.price))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestOrderAddItem_SetsBackReference(t *testing.T) {
	order := makeOrder(t)
	order.ID = 42

	item, err := domain.NewOrderItem(makeProduct(2, "1.50"), 2, decimal.RequireFromString("1.50"))
	if err != nil {
		t.Fatalf("NewOrderItem: %v", err)
	}
	if err := order.AddItem(item); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	added := order.Items[len(order.Items)-1]
	if added.OrderID != 42 {
		t.Fatalf("expected back-reference 42, got %d", added.OrderID)
	}
}

func TestOrderAddItem_InvalidQty(t *testing.T) {
	order := makeOrder(t)
	err := order.AddItem(domain.OrderItem{ProductID: 1, Qty: 0})
	if !errors.Is(err, domain.ErrItemQtyInvalid) {
		t.Fatalf("expected ErrItemQtyInvalid, got %v", err)
	}
}

func TestOrderRemoveItem_RoundTrip(t *testing.T) {
	order := makeOrder(t)
	before := order.Total()

	item, err := domain.NewOrderItem(makeProduct(2, "5.00"), 1, decimal.RequireFromString("5.00"))
	if err != nil {
		t.Fatalf("NewOrderItem: %v", err)
	}
	item.ID = 2

	if err := order.AddItem(item); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := order.RemoveItem(2); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	// addItem + removeItem того же ID возвращает коллекцию к исходному состоянию.
	if len(order.Items) != 1 {
		t.Fatalf("expected one item after round-trip, got %d", len(order.Items))
	}
	if !order.Total().Equal(before) {
		t.Fatalf("expected total %s after round-trip, got %s", before, order.Total())
	}
}

func TestOrderRemoveItem_NotFound(t *testing.T) {
	order := makeOrder(t)
	if err := order.RemoveItem(999); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestOrderTotal_SumsItems(t *testing.T) {
	order := makeOrder(t)
	if !order.Total().Equal(decimal.RequireFromString("29.97")) {
		t.Fatalf("expected 29.97, got %s", order.Total())
	}

	item, err := domain.NewOrderItem(makeProduct(2, "0.03"), 1, decimal.RequireFromString("0.03"))
	if err != nil {
		t.Fatalf("NewOrderItem: %v", err)
	}
	item.ID = 2
	if err := order.AddItem(item); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if !order.Total().Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected 30.00, got %s", order.Total())
	}
}

func TestOrderSetStatus_NoStateMachine(t *testing.T) {
	order := makeOrder(t)

	// Переходы не валидируются: любое значение словаря принимается.
	order.SetStatus(domain.OrderStatusShipped)
	order.SetStatus(domain.OrderStatusPlaced)
	order.SetStatus(domain.OrderStatus("ON_HOLD"))

	if order.Status != domain.OrderStatus("ON_HOLD") {
		t.Fatalf("expected ON_HOLD, got %s", order.Status)
	}
}

func TestOrderValidateInvariants(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerName = ""
			},
		},
		{
			name: "no email",
			mut: func(o *domain.Order) {
				o.Email = ""
			},
		},
		{
			name: "zero order date",
			mut: func(o *domain.Order) {
				o.OrderDate = time.Time{}
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Qty = 0
			},
		},
		{
			name: "negative total price",
			mut: func(o *domain.Order) {
				o.Items[0].TotalPrice = decimal.RequireFromString("-1")
			},
		},
		{
			name: "missing product reference",
			mut: func(o *domain.Order) {
				o.Items[0].ProductID = 0
			},
		},
	}

	order := makeOrder(t)
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mutOrder := makeOrder(t)
			tc.mut(&mutOrder)

			if len(mutOrder.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}
