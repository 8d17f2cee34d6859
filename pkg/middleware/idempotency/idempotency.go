package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
	"github.com/noah-isme/waste-collection-api/pkg/response"
)

const (
	HeaderKey      = "Idempotency-Key"
	ReplayedHeader = "Idempotent-Replayed"
	keyPrefix      = "idempotency:"
)

// ErrMiss is returned by a Store when nothing is recorded under the key.
var ErrMiss = errors.New("idempotency key not found")

// Store persists reservations and recorded responses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Reserve(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store on go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

func (s *RedisStore) Reserve(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type recorded struct {
	Pending     bool   `json:"pending,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware replays the recorded response of a POST, PUT or PATCH that carries an
// Idempotency-Key already seen for the same actor, method and path. A key whose first
// request is still running answers 409. 5xx outcomes are not recorded so the client
// may retry, and neither is a panicking handler. Store failures degrade to normal
// processing.
func Middleware(store Store, ttl time.Duration, actor func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 255 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Idempotency-Key must be at most 255 characters"))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		var owner string
		if actor != nil {
			owner = actor(c)
		}
		storeKey := scopedKey(owner, c.Request.Method, c.Request.URL.Path, key)

		data, err := store.Get(ctx, storeKey)
		switch {
		case err == nil:
			replay(c, data)
			return
		case !errors.Is(err, ErrMiss):
			logger.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		marker, _ := json.Marshal(recorded{Pending: true})
		ok, err := store.Reserve(ctx, storeKey, marker, ttl)
		if err != nil {
			logger.Warn("idempotency reservation failed", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			if data, err := store.Get(ctx, storeKey); err == nil {
				replay(c, data)
				return
			}
			response.Error(c, appErrors.Clone(appErrors.ErrConflict, "a request with this Idempotency-Key is already in progress"))
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		completed := false
		// Runs while a handler panic unwinds too, so the reservation never outlives it.
		defer func() {
			// The request context may already be cancelled once the client has its answer.
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			settle(saveCtx, store, storeKey, w, ttl, completed, logger)
		}()

		c.Next()
		completed = true
	}
}

// settle records the handler's response under key, or releases the reservation when
// the handler panicked or answered 5xx so the client may retry.
func settle(ctx context.Context, store Store, key string, w *captureWriter, ttl time.Duration, completed bool, logger *zap.Logger) {
	status := w.Status()
	if !completed || status >= http.StatusInternalServerError {
		if err := store.Delete(ctx, key); err != nil {
			logger.Warn("idempotency release failed", zap.Error(err))
		}
		return
	}
	payload, err := json.Marshal(recorded{
		StatusCode:  status,
		ContentType: w.Header().Get("Content-Type"),
		Body:        w.body.Bytes(),
	})
	if err == nil {
		err = store.Set(ctx, key, payload, ttl)
	}
	if err != nil {
		logger.Warn("idempotency record failed", zap.Error(err))
	}
}

func replay(c *gin.Context, data []byte) {
	var rec recorded
	if err := json.Unmarshal(data, &rec); err != nil || rec.Pending {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "a request with this Idempotency-Key is already in progress"))
		c.Abort()
		return
	}
	contentType := rec.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Header(ReplayedHeader, "true")
	if len(rec.Body) == 0 {
		c.Status(rec.StatusCode)
	} else {
		c.Data(rec.StatusCode, contentType, rec.Body)
	}
	c.Abort()
}

func scopedKey(owner, method, path, key string) string {
	sum := sha256.Sum256([]byte(owner + "\x00" + method + "\x00" + path + "\x00" + key))
	return keyPrefix + hex.EncodeToString(sum[:])
}
