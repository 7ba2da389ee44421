package oauth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/rechat/reso-odata/internal/platform/context"
	"github.com/rechat/reso-odata/internal/platform/metrics"
	"github.com/rechat/reso-odata/internal/platform/tracing"
)

// Middleware rejects missing/invalid/expired bearer tokens with 401 and
// attaches the resolved clientId to the request context otherwise, per
// spec.md §4.8.
func Middleware(store *Store, logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracing.StartSpan(c.Request().Context(), "oauth.Middleware")
			defer span.End()

			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				logger.WithContext(ctx).Warn("request is missing a bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			token := strings.TrimPrefix(auth, "Bearer ")

			grant, err := store.Get(ctx, token)
			if err != nil {
				return err
			}
			if grant == nil {
				logger.WithContext(ctx).Warn("bearer token is unknown")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid bearer token")
			}
			if grant.ExpiresAt.Before(time.Now()) {
				_ = store.Delete(ctx, token)
				logger.WithContext(ctx).Warn("bearer token is expired")
				return echo.NewHTTPError(http.StatusUnauthorized, "expired bearer token")
			}

			ctx = appctx.SetClientID(ctx, grant.ClientID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// Sweeper runs Store.Cleanup on a fixed cadence until its context is
// canceled, per spec.md §4.8's "background sweeper" requirement. It
// satisfies startup.Dependency so it starts/stops alongside every other
// process-lifetime component.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   ectologger.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewSweeper(store *Store, interval time.Duration, logger ectologger.Logger) *Sweeper {
	return &Sweeper{store: store, interval: interval, logger: logger}
}

func (s *Sweeper) GetName() string     { return "oauth-sweeper" }
func (s *Sweeper) DependsOn() []string { return nil }

func (s *Sweeper) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				accessN, refreshN, err := s.store.Cleanup(runCtx)
				if err != nil {
					s.logger.WithError(err).Error("token cleanup failed")
					continue
				}
				if accessN > 0 {
					metrics.TokensCleaned.WithLabelValues("oauth_tokens").Add(float64(accessN))
				}
				if refreshN > 0 {
					metrics.TokensCleaned.WithLabelValues("oauth_refresh_tokens").Add(float64(refreshN))
				}
				if accessN > 0 || refreshN > 0 {
					s.logger.WithFields(map[string]any{
						"access_tokens_removed":  accessN,
						"refresh_tokens_removed": refreshN,
					}).Info("token cleanup swept expired rows")
				}
			}
		}
	}()

	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return nil
}
