package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tjfontaine/polyglot-fetch/internal/request"
)

// Logging returns a middleware that logs every round trip at debug level,
// and failed round trips at warn level.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			requestID := req.Header.Get(request.RequestIDHeader)

			resp, err := next.RoundTrip(req)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", req.Method),
				slog.String("url", req.URL.Redacted()),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(req.Context(), slog.LevelWarn, "request failed", attrs...)
				return resp, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			logger.LogAttrs(req.Context(), slog.LevelDebug, "request completed", attrs...)
			return resp, nil
		})
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
