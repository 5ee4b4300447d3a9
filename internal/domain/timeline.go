package domain

import "time"

// TimelineEvent описывает событие в жизненном цикле заказа:
// размещение, смену статуса, изменение состава, удаление.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
