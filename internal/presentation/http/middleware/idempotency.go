package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/response"
	"github.com/rs/zerolog/log"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key for safe retries
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long a stored key replays its response
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
}

// bodyCapture wraps gin.ResponseWriter so the response can be stored
// alongside the key and replayed on a retry.
type bodyCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a mutating request
// arrives again with the same Idempotency-Key from the same actor.
// Requests without a key pass through untouched.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, actor, ok := idempotencyScope(c)
		if !ok {
			c.Next()
			return
		}
		if replayed := replayStored(c, cfg, key, actor); replayed {
			return
		}
		captureAndStore(c, cfg, key, actor, false)
	}
}

// IdempotencyRequired is the strict variant used on payment
// registration: the key header is mandatory, and only 2xx responses
// are stored, so a failed attempt can be retried with the same key.
func IdempotencyRequired(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}
		actor, ok := actorID(c)
		if !ok {
			response.Unauthorized(c, "X-User-ID header with a valid UUID is required")
			c.Abort()
			return
		}
		if replayed := replayStored(c, cfg, key, actor); replayed {
			return
		}
		captureAndStore(c, cfg, key, actor, true)
	}
}

// idempotencyScope extracts the key and actor for the optional
// middleware. Mutating methods only; both key and actor must be present
// for the request to participate.
func idempotencyScope(c *gin.Context) (string, uuid.UUID, bool) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return "", uuid.Nil, false
	}
	key := c.GetHeader(IdempotencyKeyHeader)
	if key == "" {
		return "", uuid.Nil, false
	}
	actor, ok := actorID(c)
	if !ok {
		return "", uuid.Nil, false
	}
	return key, actor, true
}

func actorID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// replayStored serves the stored response for a seen key. Returns true
// when the request was answered from the store.
func replayStored(c *gin.Context, cfg IdempotencyConfig, key string, actor uuid.UUID) bool {
	existing, err := cfg.Repo.GetByKey(c.Request.Context(), key, actor)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed")
		return false
	}
	if existing == nil || existing.IsExpired() {
		return false
	}
	c.Header("X-Idempotency-Replayed", "true")
	c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
	c.Abort()
	return true
}

// captureAndStore runs the handler chain with the response captured and
// persists it under the key afterwards. When successOnly is set, non-2xx
// responses are not stored so the client may retry with the same key.
func captureAndStore(c *gin.Context, cfg IdempotencyConfig, key string, actor uuid.UUID, successOnly bool) {
	capture := &bodyCapture{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
	c.Writer = capture

	c.Next()

	status := c.Writer.Status()
	if successOnly && (status < 200 || status >= 300) {
		return
	}
	record := &entity.IdempotencyKey{
		Key:          key,
		UserID:       actor,
		Endpoint:     c.Request.Method + " " + c.FullPath(),
		ResponseCode: status,
		ResponseBody: capture.body.String(),
		ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
	}
	if err := cfg.Repo.Create(c.Request.Context(), record); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("idempotency store failed")
	}
}
