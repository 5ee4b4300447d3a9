package postgres

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

func TestTimelineRepository_PostgresAppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewTimelineRepository(store)

	base := time.Now().UTC().Round(time.Microsecond)

	events := []domain.TimelineEvent{
		{OrderID: "ORD-tl-1", Type: "order.placed", Occurred: base.Add(-2 * time.Minute)},
		{OrderID: "ORD-tl-1", Type: "order.status_changed", Reason: "SHIPPED", Occurred: base.Add(-time.Minute)},
		{OrderID: "ORD-tl-2", Type: "order.placed", Occurred: base},
	}
	for _, event := range events {
		if err := repo.Append(event); err != nil {
			t.Fatalf("append %s: %v", event.Type, err)
		}
	}

	listed, err := repo.List("ORD-tl-1")
	if err != nil {
		t.Fatalf("list timeline: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 events for order, got %d", len(listed))
	}
	if listed[0].Type != "order.placed" || listed[1].Type != "order.status_changed" {
		t.Fatalf("events must be ordered by occurrence: %+v", listed)
	}
	if listed[1].Reason != "SHIPPED" {
		t.Fatalf("unexpected reason: %q", listed[1].Reason)
	}

	empty, err := repo.List("ORD-tl-missing")
	if err != nil {
		t.Fatalf("list empty timeline: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no events, got %d", len(empty))
	}
}

func TestTimelineRepository_PostgresAppendFillsOccurred(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewTimelineRepository(store)

	if err := repo.Append(domain.TimelineEvent{OrderID: "ORD-tl-zero", Type: "order.placed"}); err != nil {
		t.Fatalf("append with zero occurred: %v", err)
	}

	listed, err := repo.List("ORD-tl-zero")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Occurred.IsZero() {
		t.Fatalf("occurred must be filled on append: %+v", listed)
	}
}
