package main

import (
	"errors"
	"math"
	"net/http"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	if got := percentile(sorted, 50); got != 3 {
		t.Errorf("p50: got %f, want 3", got)
	}
	if got := percentile(sorted, 100); got != 5 {
		t.Errorf("p100: got %f, want 5", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("empty: got %f, want 0", got)
	}
	if got := percentile([]float64{7}, 99); got != 7 {
		t.Errorf("single: got %f, want 7", got)
	}
}

func TestBuildLatencySummary(t *testing.T) {
	summary := buildLatencySummary([]float64{5, 1, 3})

	if summary.Min != 1 {
		t.Errorf("min: got %f, want 1", summary.Min)
	}
	if summary.Max != 5 {
		t.Errorf("max: got %f, want 5", summary.Max)
	}
	if math.Abs(summary.Avg-3) > 1e-9 {
		t.Errorf("avg: got %f, want 3", summary.Avg)
	}

	empty := buildLatencySummary(nil)
	if empty.Max != 0 || empty.Avg != 0 {
		t.Errorf("expected zero summary for empty input: %+v", empty)
	}
}

func TestRatio(t *testing.T) {
	if got := ratio(1, 4); got != 0.25 {
		t.Errorf("got %f, want 0.25", got)
	}
	if got := ratio(1, 0); got != 0 {
		t.Errorf("got %f, want 0", got)
	}
}

func TestCollector_Record(t *testing.T) {
	stats := newCollector()

	stats.record("place_order", 10*time.Millisecond, http.StatusCreated, nil)
	stats.record("place_order", 20*time.Millisecond, http.StatusConflict, nil)
	stats.record("place_order", 5*time.Millisecond, 0, errors.New("dial error"))
	stats.recordScenario(30*time.Millisecond, true)
	stats.recordScenario(40*time.Millisecond, false)

	rep := stats.buildReport(time.Now(), time.Second)

	endpoint, ok := rep.Endpoints["place_order"]
	if !ok {
		t.Fatal("expected place_order endpoint in report")
	}
	if endpoint.Calls != 3 {
		t.Errorf("calls: got %d, want 3", endpoint.Calls)
	}
	if endpoint.Success != 1 {
		t.Errorf("success: got %d, want 1", endpoint.Success)
	}
	if endpoint.Failed != 2 {
		t.Errorf("failed: got %d, want 2", endpoint.Failed)
	}
	if endpoint.Statuses["201"] != 1 || endpoint.Statuses["409"] != 1 || endpoint.Statuses["transport_error"] != 1 {
		t.Errorf("unexpected statuses: %+v", endpoint.Statuses)
	}

	if rep.TotalScenarios != 2 {
		t.Errorf("total scenarios: got %d, want 2", rep.TotalScenarios)
	}
	if rep.SuccessScenarios != 1 || rep.FailedScenarios != 1 {
		t.Errorf("unexpected scenario counts: %+v", rep)
	}
	if rep.RPS != 2 {
		t.Errorf("rps: got %f, want 2", rep.RPS)
	}
}

func TestInt32Value(t *testing.T) {
	var target int32
	value := newInt32Value(&target, 3)

	if target != 3 {
		t.Errorf("default: got %d, want 3", target)
	}
	if value.String() != "3" {
		t.Errorf("String: got %s, want 3", value.String())
	}

	if err := value.Set("12"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if target != 12 {
		t.Errorf("after Set: got %d, want 12", target)
	}

	if err := value.Set("not-a-number"); err == nil {
		t.Error("expected error for invalid input")
	}
}
