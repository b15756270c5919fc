package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
	idempotencyPrefix = "idempotency:"
)

// storedReply is a completed response kept for replay.
type storedReply struct {
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body"`
	ContentType string          `json:"content_type"`
}

// captureWriter wraps gin.ResponseWriter so the response body can be stored
// after the handler runs.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for repeated mutating
// requests carrying the same Idempotency-Key. Webhook deliveries are exempt:
// the engine dedupes them by gateway event id and the endpoint must always
// re-evaluate the signature.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mutatingMethod(c.Request.Method) || strings.HasPrefix(c.Request.URL.Path, "/v1/webhooks/") {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyPrefix + key

		reply, err := loadReply(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			// Redis down: serve the request without replay protection.
			c.Next()
			return
		}
		if reply != nil {
			contentType := reply.ContentType
			if contentType == "" {
				contentType = "application/json"
			}
			c.Data(reply.StatusCode, contentType, reply.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		// 5xx responses are not stored so the client may retry for real.
		if status := c.Writer.Status(); status >= 200 && status < 500 {
			_ = storeReply(ctx, redisClient, cacheKey, &storedReply{
				StatusCode:  status,
				Body:        w.body.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
			})
		}
	}
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

func loadReply(ctx context.Context, client *redis.Client, key string) (*storedReply, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var reply storedReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func storeReply(ctx context.Context, client *redis.Client, key string, reply *storedReply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}
