package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

func TestIdempotencyRepository_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)

	ttlAt := time.Now().UTC().Add(time.Hour).Round(time.Microsecond)

	created, err := repo.CreateProcessing("key-1", "hash-1", ttlAt)
	if err != nil {
		t.Fatalf("create processing: %v", err)
	}
	if created.Status != domain.IdempotencyStatusProcessing {
		t.Fatalf("unexpected status: %s", created.Status)
	}

	// Повтор с тем же хэшем возвращает существующую запись.
	existing, err := repo.CreateProcessing("key-1", "hash-1", ttlAt)
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("expected ErrIdempotencyKeyAlreadyExists, got %v", err)
	}
	if existing.Key != "key-1" {
		t.Fatalf("expected existing record, got %+v", existing)
	}

	// Тот же ключ с другим телом запроса — конфликт.
	if _, err := repo.CreateProcessing("key-1", "hash-other", ttlAt); !errors.Is(err, domain.ErrIdempotencyHashMismatch) {
		t.Fatalf("expected ErrIdempotencyHashMismatch, got %v", err)
	}

	if err := repo.MarkDone("key-1", []byte(`{"order_id":"ORD-1"}`), 201); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	got, err := repo.Get("key-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.Status != domain.IdempotencyStatusDone || got.HTTPStatus != 201 {
		t.Fatalf("unexpected record after mark done: %+v", got)
	}
	if string(got.ResponseBody) != `{"order_id":"ORD-1"}` {
		t.Fatalf("unexpected stored response: %s", got.ResponseBody)
	}
}

func TestIdempotencyRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)

	if _, err := repo.CreateProcessing("  ", "hash", time.Time{}); !errors.Is(err, domain.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
	if _, err := repo.CreateProcessing("key", "  ", time.Time{}); !errors.Is(err, domain.ErrIdempotencyRequestHashRequired) {
		t.Fatalf("expected ErrIdempotencyRequestHashRequired, got %v", err)
	}
	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected ErrIdempotencyKeyNotFound, got %v", err)
	}
	if err := repo.MarkDone("missing", nil, 200); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected ErrIdempotencyKeyNotFound on mark done, got %v", err)
	}
	if err := repo.MarkFailed("missing", nil, 500); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected ErrIdempotencyKeyNotFound on mark failed, got %v", err)
	}
}

func TestIdempotencyRepository_PostgresDeleteExpired(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)

	if _, err := repo.CreateProcessing("expired-1", "hash", now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("create expired-1: %v", err)
	}
	if _, err := repo.CreateProcessing("expired-2", "hash", now.Add(-time.Hour)); err != nil {
		t.Fatalf("create expired-2: %v", err)
	}
	if _, err := repo.CreateProcessing("alive", "hash", now.Add(time.Hour)); err != nil {
		t.Fatalf("create alive: %v", err)
	}

	deleted, err := repo.DeleteExpired(now, 1)
	if err != nil {
		t.Fatalf("delete expired with limit: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	deleted, err = repo.DeleteExpired(now, 10)
	if err != nil {
		t.Fatalf("delete remaining expired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 more deleted, got %d", deleted)
	}

	if _, err := repo.Get("alive"); err != nil {
		t.Fatalf("live record must survive cleanup: %v", err)
	}
}
