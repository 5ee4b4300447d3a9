package domain

import "errors"

var (
	// Ошибка отсутствующего имени покупателя.
	ErrCustomerNameRequired = errors.New("customer_name is required")
	// Ошибка отсутствующего email покупателя.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка отсутствующей даты заказа.
	ErrOrderDateRequired = errors.New("order_date is required")
	// Ошибка при некорректном количестве товара (< 1).
	ErrItemQtyInvalid = errors.New("item qty must be at least one")
	// Ошибка, если стоимость позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item total price must be non-negative")
	// Ошибка отсутствующей ссылки на товар в позиции.
	ErrProductRequired = errors.New("item product reference is required")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrItemNotFound возвращается, если позиция отсутствует в заказе или хранилище.
	ErrItemNotFound = errors.New("order item not found")
	// ErrProductNotFound возвращается каталогом, если товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderIDTaken — нарушение уникальности orderId при сохранении.
	// Хранилище не перегенерирует идентификатор: это делает вызывающая сторона.
	ErrOrderIDTaken = errors.New("order_id is already taken")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// ErrIdempotencyKeyRequired — запрос пришёл без idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — не передан hash тела запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ переиспользован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key is used with different request payload")
	// ErrIdempotencyKeyNotFound — запись по ключу не найдена.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// IsConstraintViolation проверяет, является ли ошибка нарушением
// uniqueness-ограничения orderId на стороне хранилища.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrOrderIDTaken)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsValidation проверяет, относится ли ошибка к локальной валидации агрегата.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrCustomerNameRequired,
		ErrEmailRequired,
		ErrOrderDateRequired,
		ErrItemQtyInvalid,
		ErrItemPriceInvalid,
		ErrProductRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound проверяет, относится ли ошибка к отсутствию записи.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrProductNotFound)
}
