package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/smartgement/merchant-backend/api/responses"
	"github.com/smartgement/merchant-backend/pkg/config"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

// RateLimiterStore is the counter backend for the chat limiter.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ChatRateLimit throttles assistant messages per merchant over a fixed window.
// A nil store disables the limiter.
func ChatRateLimit(cfg config.ChatRateLimitConfig, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.Window <= 0 || cfg.MessageLimit <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			merchantID := MerchantIDFromContext(ctx)
			scope := fmt.Sprintf("chat:%s", merchantID)

			allowed, _, err := store.FixedWindowAllow(ctx, scope, int64(cfg.MessageLimit), cfg.Window)
			if err != nil {
				// Redis problems must not take the assistant down.
				if logg != nil {
					logg.Error(ctx, "chat rate limit check failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many messages, slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
