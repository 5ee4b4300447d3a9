package domain

// OrderRepository описывает требования к хранилищу заказов.
// Хранилище назначает суррогатные идентификаторы и гарантирует
// уникальность orderId; каскадное удаление позиций — его обязанность.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями и возвращает его
	// с назначенными ID. При занятом orderId возвращает ErrOrderIDTaken.
	Create(order Order) (Order, error)
	// Get возвращает заказ по orderId или ErrOrderNotFound, если его нет.
	// Позиции загружаются в порядке добавления.
	Get(orderID string) (Order, error)
	// GetByItemID разрешает обратную ссылку позиции: возвращает
	// заказ-владелец по идентификатору позиции.
	GetByItemID(itemID int64) (Order, error)
	// List возвращает заказы, новые первыми, с опциональным лимитом.
	List(limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking и
	// заменяет набор позиций на переданный (новым позициям назначаются ID).
	Save(order Order) (Order, error)
	// Delete удаляет заказ и каскадно все его позиции в одной транзакции.
	Delete(orderID string) error
}
