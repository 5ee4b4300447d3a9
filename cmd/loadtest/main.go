package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultOrderDate = "2026-01-15"

type loadMode string

const (
	modePlace       loadMode = "place"
	modePlaceShip   loadMode = "place-ship"
	modePlaceDelete loadMode = "place-delete"
)

// config — параметры нагрузочного прогона.
type config struct {
	baseURL     string
	total       int
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	mode        loadMode
	productID   int64
	qty         int32
	idempotency bool
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type endpointReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Statuses  map[string]int64 `json:"statuses"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time                 `json:"started_at"`
	DurationSeconds   float64                   `json:"duration_seconds"`
	TotalScenarios    int64                     `json:"total_scenarios"`
	SuccessScenarios  int64                     `json:"success_scenarios"`
	FailedScenarios   int64                     `json:"failed_scenarios"`
	ErrorRate         float64                   `json:"error_rate"`
	RPS               float64                   `json:"rps"`
	ScenarioLatencyMs latencySummary            `json:"scenario_latency_ms"`
	Endpoints         map[string]endpointReport `json:"endpoints"`
}

type endpointStats struct {
	calls     int64
	success   int64
	failed    int64
	statuses  map[string]int64
	latencies []float64
}

// collector агрегирует статистику вызовов по endpoint-ам.
type collector struct {
	mu        sync.Mutex
	endpoints map[string]*endpointStats
	scenarios []float64
	succeeded int64
	failed    int64
}

func newCollector() *collector {
	return &collector{
		endpoints: make(map[string]*endpointStats),
	}
}

func (c *collector) record(endpoint string, latency time.Duration, status int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.endpoints[endpoint]
	if !ok {
		stats = &endpointStats{statuses: make(map[string]int64)}
		c.endpoints[endpoint] = stats
	}

	stats.calls++
	label := "transport_error"
	if err == nil {
		label = fmt.Sprintf("%d", status)
		if status < http.StatusBadRequest {
			stats.success++
		} else {
			stats.failed++
		}
	} else {
		stats.failed++
	}
	stats.statuses[label]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) recordScenario(latency time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scenarios = append(c.scenarios, float64(latency.Microseconds())/1000.0)
	if ok {
		c.succeeded++
	} else {
		c.failed++
	}
}

func (c *collector) buildReport(startedAt time.Time, elapsed time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	endpoints := make(map[string]endpointReport, len(c.endpoints))
	for name, stats := range c.endpoints {
		statuses := make(map[string]int64, len(stats.statuses))
		for status, count := range stats.statuses {
			statuses[status] = count
		}
		endpoints[name] = endpointReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Statuses:  statuses,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	total := c.succeeded + c.failed
	seconds := elapsed.Seconds()
	rps := 0.0
	if seconds > 0 {
		rps = float64(total) / seconds
	}

	return report{
		StartedAt:         startedAt,
		DurationSeconds:   seconds,
		TotalScenarios:    total,
		SuccessScenarios:  c.succeeded,
		FailedScenarios:   c.failed,
		ErrorRate:         ratio(c.failed, total),
		RPS:               rps,
		ScenarioLatencyMs: buildLatencySummary(c.scenarios),
		Endpoints:         endpoints,
	}
}

func main() {
	cfg, err := readConfig()
	if err != nil {
		fail("%v", err)
	}

	ctx := context.Background()
	if cfg.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}

	rep := runLoad(ctx, cfg)

	encoded, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fail("encode report: %v", err)
	}

	fmt.Println(string(encoded))

	if cfg.outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.outputPath), 0o755); err != nil {
			fail("create report dir: %v", err)
		}
		if err := os.WriteFile(cfg.outputPath, encoded, 0o644); err != nil {
			fail("write report: %v", err)
		}
	}
}

func readConfig() (config, error) {
	var (
		cfg  config
		mode string
	)

	flag.StringVar(&cfg.baseURL, "url", "http://localhost:8080", "base URL of the order service")
	flag.IntVar(&cfg.total, "total", 100, "total number of scenarios to run (ignored when -duration is set)")
	flag.DurationVar(&cfg.duration, "duration", 0, "run for a fixed duration instead of a fixed total")
	flag.IntVar(&cfg.concurrency, "concurrency", 4, "number of concurrent workers")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.StringVar(&mode, "mode", string(modePlace), "scenario: place|place-ship|place-delete")
	flag.Int64Var(&cfg.productID, "product-id", 1, "catalog product id used in placed orders")
	flag.Var(newInt32Value(&cfg.qty, 1), "qty", "item quantity per order")
	flag.BoolVar(&cfg.idempotency, "idempotency", false, "send a unique Idempotency-Key per scenario")
	flag.StringVar(&cfg.outputPath, "output", "", "write JSON report to file")
	flag.Parse()

	cfg.mode = loadMode(strings.ToLower(strings.TrimSpace(mode)))
	switch cfg.mode {
	case modePlace, modePlaceShip, modePlaceDelete:
	default:
		return config{}, fmt.Errorf("unsupported mode: %s (use place|place-ship|place-delete)", mode)
	}

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return config{}, fmt.Errorf("url is required")
	}
	if cfg.total <= 0 && cfg.duration <= 0 {
		return config{}, fmt.Errorf("either -total or -duration must be positive")
	}
	if cfg.concurrency <= 0 {
		return config{}, fmt.Errorf("concurrency must be > 0")
	}
	if cfg.qty < 1 {
		return config{}, fmt.Errorf("qty must be >= 1")
	}

	return cfg, nil
}

func runLoad(ctx context.Context, cfg config) report {
	client := &http.Client{Timeout: cfg.timeout}
	stats := newCollector()

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := 0; ; i++ {
			if cfg.duration <= 0 && i >= cfg.total {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	startedAt := time.Now()
	var wg sync.WaitGroup
	for worker := 0; worker < cfg.concurrency; worker++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for seq := range jobs {
				runScenario(ctx, client, cfg, stats, workerID, seq)
			}
		}(worker)
	}
	wg.Wait()

	return stats.buildReport(startedAt, time.Since(startedAt))
}

func runScenario(ctx context.Context, client *http.Client, cfg config, stats *collector, workerID, seq int) {
	started := time.Now()
	ok := true

	orderID, err := placeOrder(ctx, client, cfg, stats, workerID, seq)
	if err != nil {
		stats.recordScenario(time.Since(started), false)
		return
	}

	switch cfg.mode {
	case modePlaceShip:
		if err := updateStatus(ctx, client, cfg, stats, orderID, "SHIPPED"); err != nil {
			ok = false
		}
	case modePlaceDelete:
		if err := deleteOrder(ctx, client, cfg, stats, orderID); err != nil {
			ok = false
		}
	}

	stats.recordScenario(time.Since(started), ok)
}

func placeOrder(ctx context.Context, client *http.Client, cfg config, stats *collector, workerID, seq int) (string, error) {
	payload := map[string]any{
		"customer_name": fmt.Sprintf("loadtest-worker-%d", workerID),
		"email":         fmt.Sprintf("loadtest-%d-%d@example.com", workerID, seq),
		"order_date":    defaultOrderDate,
		"items": []map[string]any{
			{"product_id": cfg.productID, "qty": cfg.qty},
		},
	}

	headers := map[string]string{}
	if cfg.idempotency {
		headers["Idempotency-Key"] = uuid.NewString()
	}

	status, body, err := doJSON(ctx, client, http.MethodPost, cfg.baseURL+"/api/orders", payload, headers, stats, "place_order")
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", status)
	}

	var placed struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(body, &placed); err != nil {
		return "", err
	}
	if placed.OrderID == "" {
		return "", fmt.Errorf("response has no order_id")
	}
	return placed.OrderID, nil
}

func updateStatus(ctx context.Context, client *http.Client, cfg config, stats *collector, orderID, status string) error {
	code, _, err := doJSON(ctx, client, http.MethodPatch,
		cfg.baseURL+"/api/orders/"+orderID+"/status",
		map[string]any{"status": status}, nil, stats, "update_status")
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("unexpected status %d", code)
	}
	return nil
}

func deleteOrder(ctx context.Context, client *http.Client, cfg config, stats *collector, orderID string) error {
	code, _, err := doJSON(ctx, client, http.MethodDelete,
		cfg.baseURL+"/api/orders/"+orderID, nil, nil, stats, "delete_order")
	if err != nil {
		return err
	}
	if code != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d", code)
	}
	return nil
}

func doJSON(
	ctx context.Context,
	client *http.Client,
	method, url string,
	payload any,
	headers map[string]string,
	stats *collector,
	endpoint string,
) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	started := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(started)
	if err != nil {
		stats.record(endpoint, latency, 0, err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	stats.record(endpoint, latency, resp.StatusCode, err)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}

// int32Value адаптирует int32 под flag.Value.
type int32Value struct {
	target *int32
}

func newInt32Value(target *int32, def int32) *int32Value {
	*target = def
	return &int32Value{target: target}
}

func (v *int32Value) String() string {
	if v.target == nil {
		return "0"
	}
	return fmt.Sprintf("%d", *v.target)
}

func (v *int32Value) Set(raw string) error {
	var parsed int32
	if _, err := fmt.Sscanf(raw, "%d", &parsed); err != nil {
		return err
	}
	*v.target = parsed
	return nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
