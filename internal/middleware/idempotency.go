package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
)

// storedResponse is what a replay sends back.
type storedResponse struct {
	Status      int             `json:"status"`
	ContentType string          `json:"content_type,omitempty"`
	Body        json.RawMessage `json:"body"`
}

// replayStore keeps responses in Redis under "idempotency:<method>:<path>:<key>".
type replayStore struct {
	client *redis.Client
}

func (s replayStore) key(c *gin.Context, idempotencyKey string) string {
	return "idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + idempotencyKey
}

// load returns nil without error when nothing is stored.
func (s replayStore) load(ctx context.Context, key string) (*storedResponse, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s replayStore) save(ctx context.Context, key string, resp storedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, idempotencyTTL).Err()
}

// bodyRecorder tees the handler's output so it can be stored.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a mutating request
// that repeats an Idempotency-Key on the same route, so a clock-in or job
// completion retried by a flaky device applies once. Redis failures turn
// replay off for that request instead of failing it.
func IdempotencyMiddleware(redisClient *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := replayStore{client: redisClient}

	return func(c *gin.Context) {
		idempotencyKey := c.GetHeader(idempotencyHeader)
		if idempotencyKey == "" || redisClient == nil || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := store.key(c, idempotencyKey)

		stored, err := store.load(ctx, key)
		if err != nil {
			logger.Warn("idempotency lookup failed", zap.String("key", idempotencyKey), zap.Error(err))
			c.Next()
			return
		}
		if stored != nil {
			c.Header(replayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// 5xx responses may succeed on retry.
		status := rec.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		resp := storedResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := store.save(ctx, key, resp); err != nil {
			logger.Warn("idempotency store failed", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
