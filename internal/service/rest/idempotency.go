package rest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// idempotencyKeyHeader — заголовок с клиентским ключом идемпотентности.
const idempotencyKeyHeader = "Idempotency-Key"

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyMiddleware защищает мутирующие запросы от повторной обработки:
// сохранённый ответ выдаётся повторно для того же ключа и того же тела.
type IdempotencyMiddleware struct {
	repo   domain.IdempotencyRepository
	logger *log.Entry
	ttl    time.Duration
}

// NewIdempotencyMiddleware создаёт middleware поверх репозитория ключей.
func NewIdempotencyMiddleware(repo domain.IdempotencyRepository, logger *log.Entry) *IdempotencyMiddleware {
	if logger == nil {
		logger = log.WithField("component", "idempotency-middleware")
	}
	return &IdempotencyMiddleware{
		repo:   repo,
		logger: logger,
		ttl:    defaultIdempotencyTTL,
	}
}

// Wrap оборачивает handler идемпотентной обработкой. Запросы без
// Idempotency-Key проходят насквозь.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyKeyHeader)
		if key == "" || m.repo == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		requestHash := hashRequest(r.Method, r.URL.Path, body)

		_, err = m.repo.CreateProcessing(key, requestHash, time.Now().UTC().Add(m.ttl))
		switch {
		case err == nil:
			// Первый запрос с этим ключом: обрабатываем и сохраняем ответ.
		case errors.Is(err, domain.ErrIdempotencyHashMismatch):
			writeError(w, http.StatusConflict, "idempotency_hash_mismatch",
				"idempotency key is used with different request payload")
			return
		case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
			m.replay(w, key)
			return
		default:
			// Хранилище ключей недоступно: не блокируем обработку запроса.
			m.logger.WithError(err).WithField("idempotency_key", key).Warn("idempotency store unavailable")
			next.ServeHTTP(w, r)
			return
		}

		recorder := newResponseRecorder()
		next.ServeHTTP(recorder, r)

		if recorder.status < http.StatusBadRequest {
			err = m.repo.MarkDone(key, recorder.body.Bytes(), recorder.status)
		} else {
			err = m.repo.MarkFailed(key, recorder.body.Bytes(), recorder.status)
		}
		if err != nil {
			m.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent response")
		}

		recorder.flushTo(w)
	})
}

// replay выдаёт сохранённый ответ для повторного запроса с тем же ключом.
func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, key string) {
	record, err := m.repo.Get(key)
	if err != nil {
		m.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to load idempotency record")
		writeError(w, http.StatusConflict, "request_in_flight", "request with this idempotency key is being processed")
		return
	}

	if record.Status == domain.IdempotencyStatusProcessing {
		writeError(w, http.StatusConflict, "request_in_flight", "request with this idempotency key is being processed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(record.HTTPStatus)
	_, _ = w.Write(record.ResponseBody)
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// responseRecorder буферизует ответ handler-а, чтобы его можно было
// сохранить в репозитории до отправки клиенту.
type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

func (r *responseRecorder) flushTo(w http.ResponseWriter) {
	for key, values := range r.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(r.status)
	_, _ = w.Write(r.body.Bytes())
}
