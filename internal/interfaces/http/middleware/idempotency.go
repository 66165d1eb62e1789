package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader lets a client retry a create without duplicating it
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader is set on responses served from the store
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// storedResponse is what gets saved for a finished keyed request
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter copies the response body while writing it through
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Only 2xx responses are kept; a failed request releases its key so the
// client can retry. Requests without the header pass straight through
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyKeyHeader)
		if header == "" {
			c.Next()
			return
		}
		if len(header) > maxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		ctx := c.Request.Context()
		key := c.Request.Method + " " + c.FullPath() + " " + header

		fresh, err := store.MarkProcessed(ctx, key, ttl)
		if err != nil {
			// a broken store must not block sales; run the request unguarded
			logger.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !fresh {
			replay(c, store, key, logger)
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		status := cw.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Forget(ctx, key); err != nil {
				logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}

		data, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.buf.Bytes(),
		})
		if err == nil {
			err = store.SaveResult(ctx, key, data, ttl)
		}
		if err != nil {
			logger.Warn("failed to save idempotent response", zap.String("key", key), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, store shared.IdempotencyStore, key string, logger *zap.Logger) {
	data, ok, err := store.Result(c.Request.Context(), key)
	if err != nil {
		logger.Warn("failed to read idempotent response", zap.String("key", key), zap.Error(err))
	}

	var saved storedResponse
	if !ok || err != nil || json.Unmarshal(data, &saved) != nil {
		abortWithError(c, dto.ErrCodeIdempotencyConflict, "A request with this Idempotency-Key is still being processed")
		return
	}

	c.Header(IdempotentReplayHeader, "true")
	c.Data(saved.Status, saved.ContentType, saved.Body)
	c.Abort()
}

func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}
