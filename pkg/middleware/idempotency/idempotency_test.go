package idempotency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errors.New("redis down")
	}
	v, ok := s.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (s *memoryStore) Reserve(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func newRouter(store Store, status *int, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(store, time.Minute, func(*gin.Context) string { return "user-1" }, nil))
	r.POST("/requests", func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"call": *calls})
	})
	return r
}

func post(r http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/requests", nil)
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareReplaysRecordedResponse(t *testing.T) {
	status, calls := http.StatusCreated, 0
	r := newRouter(newMemoryStore(), &status, &calls)

	first := post(r, "abc")
	require.Equal(t, http.StatusCreated, first.Code)

	second := post(r, "abc")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	post(r, "other")
	assert.Equal(t, 2, calls)
}

func TestMiddlewareSkipsWithoutKey(t *testing.T) {
	status, calls := http.StatusCreated, 0
	r := newRouter(newMemoryStore(), &status, &calls)
	post(r, "")
	post(r, "")
	assert.Equal(t, 2, calls)
}

func TestMiddlewareReleasesKeyOnServerError(t *testing.T) {
	status, calls := http.StatusInternalServerError, 0
	store := newMemoryStore()
	r := newRouter(store, &status, &calls)

	post(r, "abc")
	status = http.StatusOK
	w := post(r, "abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, calls)
}

func TestMiddlewareReleasesKeyWhenHandlerPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newMemoryStore()
	calls := 0
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Middleware(store, time.Minute, func(*gin.Context) string { return "user-1" }, nil))
	r.POST("/requests", func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("handler exploded")
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	first := post(r, "abc")
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	store.mu.Lock()
	assert.Empty(t, store.data)
	store.mu.Unlock()

	second := post(r, "abc")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get(ReplayedHeader))
	assert.Equal(t, 2, calls)

	third := post(r, "abc")
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, "true", third.Header().Get(ReplayedHeader))
	assert.Equal(t, 2, calls)
}

func TestMiddlewareRejectsInFlightDuplicate(t *testing.T) {
	status, calls := http.StatusOK, 0
	store := newMemoryStore()
	r := newRouter(store, &status, &calls)

	key := scopedKey("user-1", http.MethodPost, "/requests", "abc")
	_, _ = store.Reserve(context.Background(), key, []byte(`{"pending":true}`), time.Minute)

	w := post(r, "abc")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)
}

func TestMiddlewareDegradesWhenStoreFails(t *testing.T) {
	status, calls := http.StatusOK, 0
	store := newMemoryStore()
	store.failGet = true
	r := newRouter(store, &status, &calls)

	post(r, "abc")
	post(r, "abc")
	assert.Equal(t, 2, calls)
}
