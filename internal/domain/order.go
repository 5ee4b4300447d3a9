package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус заказа. Домен статусов открытый: значения
// задаёт бизнес-политика снаружи, ядро переходы не проверяет.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, но ещё не размещён.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusPlaced — заказ размещён покупателем.
	OrderStatusPlaced OrderStatus = "PLACED"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID — суррогатный идентификатор, назначается хранилищем.
	ID int64
	// OrderID — обратная ссылка на заказ-владелец. Заполняется хранилищем и
	// используется только для навигации (GetByItemID), не для владения.
	OrderID int64
	// ProductID — ссылка на товар каталога. Позиция не владеет товаром:
	// на один товар могут ссылаться позиции разных заказов.
	ProductID int64
	// Qty — количество единиц товара, всегда >= 1.
	Qty int32
	// TotalPrice — qty * цена единицы на момент заказа. Фиксируется при
	// создании позиции и не пересчитывается, даже если цена товара в
	// каталоге потом изменилась.
	TotalPrice decimal.Decimal
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// NewOrderItem создаёт позицию заказа и фиксирует её стоимость:
// TotalPrice = qty * unitPrice. Сама unitPrice отдельно не хранится.
func NewOrderItem(product Product, qty int32, unitPrice decimal.Decimal) (OrderItem, error) {
	if product.ID == 0 {
		return OrderItem{}, ErrProductRequired
	}
	if qty < 1 {
		return OrderItem{}, ErrItemQtyInvalid
	}
	if unitPrice.IsNegative() {
		return OrderItem{}, ErrItemPriceInvalid
	}

	return OrderItem{
		ProductID:  product.ID,
		Qty:        qty,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt32(qty)),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Order агрегирует заказ покупателя и принадлежащие ему позиции.
// Позиции живут только внутри заказа: удаление заказа каскадно удаляет их.
type Order struct {
	// ID — суррогатный идентификатор, назначается хранилищем при первом сохранении.
	ID int64
	// OrderID — бизнес-идентификатор заказа, глобально уникален.
	// Уникальность гарантирует хранилище; после назначения не меняется.
	OrderID      string
	CustomerName string
	Email        string
	Status       OrderStatus
	// OrderDate — календарная дата оформления заказа.
	OrderDate time.Time
	Items     []OrderItem
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder создаёт заказ без позиций со статусом PENDING.
// Идентификаторы не назначаются: это делает хранилище при сохранении.
func NewOrder(customerName, email string, orderDate time.Time) (Order, error) {
	if customerName == "" {
		return Order{}, ErrCustomerNameRequired
	}
	if email == "" {
		return Order{}, ErrEmailRequired
	}

	now := time.Now().UTC()
	return Order{
		CustomerName: customerName,
		Email:        email,
		Status:       OrderStatusPending,
		OrderDate:    orderDate,
		Items:        []OrderItem{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AddItem добавляет позицию в заказ, выставляя обратную ссылку на владельца.
func (o *Order) AddItem(item OrderItem) error {
	if item.Qty < 1 {
		return ErrItemQtyInvalid
	}
	if item.TotalPrice.IsNegative() {
		return ErrItemPriceInvalid
	}
	if item.ProductID == 0 {
		return ErrProductRequired
	}

	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveItem удаляет позицию по идентификатору.
// Возвращает ErrItemNotFound, если такой позиции в заказе нет.
func (o *Order) RemoveItem(itemID int64) error {
	for i, item := range o.Items {
		if item.ID != itemID {
			continue
		}
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
		o.UpdatedAt = time.Now().UTC()
		return nil
	}
	return ErrItemNotFound
}

// SetStatus назначает статус заказа без валидации переходов.
func (o *Order) SetStatus(status OrderStatus) {
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
}

// Total возвращает сумму TotalPrice всех позиций. Без побочных эффектов.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerName == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if o.Email == "" {
		errs = append(errs, ErrEmailRequired)
	}
	if o.OrderDate.IsZero() {
		errs = append(errs, ErrOrderDateRequired)
	}

	for _, item := range o.Items {
		if item.Qty < 1 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.TotalPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if item.ProductID == 0 {
			errs = append(errs, ErrProductRequired)
		}
	}

	return errs
}
