package controller

import (
	"net"
	"net/http"
	"time"

	"github.com/mamgad/DVBLab/internal/adapter/http/middleware"
	"github.com/mamgad/DVBLab/internal/logger"
)

func logRequest(r *http.Request, payload any) {
	logger.Info("http request", logger.Fields{
		"requestId": middleware.RequestIDFrom(r.Context()),
		"method":    r.Method,
		"path":      r.URL.Path,
		"query":     r.URL.RawQuery,
		"payload":   logger.SanitizePayload(payload),
	})
}

func logResponse(r *http.Request, status int, start time.Time) {
	logger.Info("http response", logger.Fields{
		"requestId":  middleware.RequestIDFrom(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"durationMs": time.Since(start).Milliseconds(),
	})
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := logger.Fields{
		"requestId": middleware.RequestIDFrom(r.Context()),
		"method":    r.Method,
		"path":      r.URL.Path,
		"query":     r.URL.RawQuery,
	}
	for k, v := range extra {
		fields[k] = v
	}
	logger.Error("http handler error", err, fields)
}

// clientIP strips the port from the peer address; the bare address is what
// the attempt and audit tables store.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
