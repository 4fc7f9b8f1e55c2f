package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
)

// visitorExpiry bounds how long an idle client's token bucket is kept.
const visitorExpiry = 5 * time.Minute

// newAnalysisRateLimiter throttles the text-analysis endpoint per client IP.
// Rejections surface as structured rate-limited errors so they share the
// standard error response shape and counters.
func newAnalysisRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: visitorExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.InternalError("failed to identify client for rate limiting", err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.RateLimitedError("analysis rate limit exceeded, retry shortly").
				WithField("client", identifier)
		},
	})
}
