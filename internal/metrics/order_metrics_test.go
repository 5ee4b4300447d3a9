package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetricsWithRegisterer(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("metrics should not be nil")
	}
	if metrics.ordersPlaced == nil {
		t.Error("ordersPlaced counter should not be nil")
	}
	if metrics.ordersDeleted == nil {
		t.Error("ordersDeleted counter should not be nil")
	}
	if metrics.statusChanges == nil {
		t.Error("statusChanges counter vec should not be nil")
	}
	if metrics.placeFailed == nil {
		t.Error("placeFailed counter should not be nil")
	}
	if metrics.placeDuration == nil {
		t.Error("placeDuration histogram should not be nil")
	}
	if metrics.orderTotal == nil {
		t.Error("orderTotal histogram should not be nil")
	}
	if metrics.timelineEvents == nil {
		t.Error("timelineEvents counter should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
}

func TestNewOrderMetricsIsDuplicateSafe(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(reg)
	second := newOrderMetricsWithRegisterer(reg)

	// Повторная регистрация возвращает уже существующие коллекторы.
	if first.ordersPlaced != second.ordersPlaced {
		t.Error("expected shared ordersPlaced collector on re-register")
	}
}

func TestRecordOrderPlaced(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderPlaced()
	metrics.RecordOrderPlaced()

	metric := &dto.Metric{}
	if err := metrics.ordersPlaced.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordStatusChange(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordStatusChange("SHIPPED")
	metrics.RecordStatusChange("SHIPPED")
	metrics.RecordStatusChange("CANCELLED")

	shipped := &dto.Metric{}
	if err := metrics.statusChanges.WithLabelValues("SHIPPED").Write(shipped); err != nil {
		t.Fatalf("failed to write shipped metric: %v", err)
	}
	if shipped.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 shipped transitions, got %f", shipped.Counter.GetValue())
	}

	cancelled := &dto.Metric{}
	if err := metrics.statusChanges.WithLabelValues("CANCELLED").Write(cancelled); err != nil {
		t.Fatalf("failed to write cancelled metric: %v", err)
	}
	if cancelled.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 cancelled transition, got %f", cancelled.Counter.GetValue())
	}
}

func TestRecordPlaceDuration(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordPlaceDuration(100 * time.Millisecond)
	metrics.RecordPlaceDuration(500 * time.Millisecond)

	metric := &dto.Metric{}
	if err := metrics.placeDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples, got %d", metric.Histogram.GetSampleCount())
	}

	// Sum is approximately 0.1 + 0.5 = 0.6
	sum := metric.Histogram.GetSampleSum()
	if sum < 0.55 || sum > 0.65 {
		t.Errorf("expected sum around 0.6, got %f", sum)
	}
}

func TestRecordOrderTotal(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderTotal(29.97)
	metrics.RecordOrderTotal(149.50)

	metric := &dto.Metric{}
	if err := metrics.orderTotal.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples, got %d", metric.Histogram.GetSampleCount())
	}
}

func TestRecordOutboxAndTimelineEvents(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOutboxEvent()
	metrics.RecordTimelineEvent()
	metrics.RecordTimelineEvent()

	outbox := &dto.Metric{}
	if err := metrics.outboxEvents.Write(outbox); err != nil {
		t.Fatalf("failed to write outbox metric: %v", err)
	}
	if outbox.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 outbox event, got %f", outbox.Counter.GetValue())
	}

	timeline := &dto.Metric{}
	if err := metrics.timelineEvents.Write(timeline); err != nil {
		t.Fatalf("failed to write timeline metric: %v", err)
	}
	if timeline.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 timeline events, got %f", timeline.Counter.GetValue())
	}
}
