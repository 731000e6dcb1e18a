package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/ratelimit"
)

// requestLogger attaches a request scoped logger carrying req_id and logs one
// http.request line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := middleware.GetReqID(r.Context())
		log := s.logger.With("req_id", rid)

		ctx := common.WithRequestID(r.Context(), rid)
		ctx = common.WithLogger(ctx, log)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		log.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"remote", r.RemoteAddr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// rateLimit rejects requests with 429 once the client's address runs out of tokens.
func (s *Server) rateLimit(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				log := common.LoggerFromContext(r.Context(), s.logger)
				log.Warn("http.ratelimit.exceeded", "ip", key, "path", r.URL.Path)
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later", nil, log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, which RealIP has already rewritten from
// forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
