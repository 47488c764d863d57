package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartgement/merchant-backend/pkg/config"
)

type fakeLimiterStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiterStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func chatLimitConfig(limit int) config.ChatRateLimitConfig {
	return config.ChatRateLimitConfig{MessageLimit: limit, Window: time.Minute}
}

func TestChatRateLimitAllowsUnderLimit(t *testing.T) {
	store := &fakeLimiterStore{}
	handler := ChatRateLimit(chatLimitConfig(2), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/message", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/message", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT")
}

func TestChatRateLimitNilStorePassesThrough(t *testing.T) {
	handler := ChatRateLimit(chatLimitConfig(1), nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/message", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestChatRateLimitStoreFailureFailsOpen(t *testing.T) {
	store := &fakeLimiterStore{err: fmt.Errorf("redis down")}
	handler := ChatRateLimit(chatLimitConfig(1), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/message", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
