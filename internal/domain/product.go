package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога. Для ядра заказов это read-only модель:
// жизненным циклом товара владеет каталог, заказ лишь ссылается на него.
type Product struct {
	ID       int64
	Name     string
	Brand    string
	Category string
	// UnitPrice — текущая цена за единицу. Используется только в момент
	// создания позиции заказа; дальше позиция живёт с зафиксированной суммой.
	UnitPrice decimal.Decimal
	// StockQty — остаток на складе. Ядро заказов остатки не резервирует.
	StockQty  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}
