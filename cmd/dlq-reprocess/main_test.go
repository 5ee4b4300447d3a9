package main

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
)

func TestParseBrokers(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 0},
		{raw: "localhost:9092", want: 1},
		{raw: "localhost:9092, localhost:9093", want: 2},
		{raw: " , ,localhost:9092,", want: 1},
	}

	for _, tc := range cases {
		if got := parseBrokers(tc.raw); len(got) != tc.want {
			t.Errorf("parseBrokers(%q): got %d brokers, want %d", tc.raw, len(got), tc.want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "value", "other"); got != "value" {
		t.Errorf("unexpected result: %q", got)
	}
	if got := firstNonEmpty("", "  "); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestExtractReplayMessage_ConsumerDLQFormat(t *testing.T) {
	payload := map[string]any{
		"original_topic": "ecom.order.events",
		"original_key":   "ORD-1",
		"original_value": `{"event_type":"order.placed"}`,
		"error_message":  "handler failed",
	}
	raw, _ := json.Marshal(payload)

	msg := &sarama.ConsumerMessage{Value: raw}
	replay, ok, err := extractReplayMessage(msg, "fallback.topic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected message to be replayable")
	}
	if replay.topic != "ecom.order.events" {
		t.Errorf("unexpected topic: %s", replay.topic)
	}
	if replay.key != "ORD-1" {
		t.Errorf("unexpected key: %s", replay.key)
	}
	if string(replay.value) != `{"event_type":"order.placed"}` {
		t.Errorf("unexpected value: %s", replay.value)
	}
}

func TestExtractReplayMessage_OutboxDLQFormat(t *testing.T) {
	inner := map[string]any{
		"outbox_id":      "msg-1",
		"aggregate_type": "order",
		"aggregate_id":   "ORD-2",
		"event_type":     "order.status_changed",
		"payload":        json.RawMessage(`{"status":"SHIPPED"}`),
		"publish_error":  "broker down",
	}
	innerRaw, _ := json.Marshal(inner)

	envelope := map[string]any{
		"id":             "msg-1",
		"aggregate_type": "order",
		"aggregate_id":   "ORD-2",
		"event_type":     "order.status_changed",
		"payload":        json.RawMessage(innerRaw),
	}
	raw, _ := json.Marshal(envelope)

	msg := &sarama.ConsumerMessage{Value: raw}
	replay, ok, err := extractReplayMessage(msg, "ecom.order.events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected message to be replayable")
	}
	if replay.topic != "ecom.order.events" {
		t.Errorf("unexpected topic: %s", replay.topic)
	}
	if replay.key != "ORD-2" {
		t.Errorf("unexpected key: %s", replay.key)
	}

	var decoded replayEnvelope
	if err := json.Unmarshal(replay.value, &decoded); err != nil {
		t.Fatalf("failed to decode replay envelope: %v", err)
	}
	if decoded.EventType != "order.status_changed" {
		t.Errorf("unexpected event type: %s", decoded.EventType)
	}
	if string(decoded.Payload) != `{"status":"SHIPPED"}` {
		t.Errorf("unexpected payload: %s", decoded.Payload)
	}
}

func TestExtractReplayMessage_UnsupportedFormat(t *testing.T) {
	msg := &sarama.ConsumerMessage{Value: []byte("not-json")}
	_, ok, err := extractReplayMessage(msg, "fallback.topic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected message to be skipped")
	}
}

func TestPublishReplay_NilProducer(t *testing.T) {
	if err := publishReplay(nil, replayMessage{topic: "t", key: "k"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}
