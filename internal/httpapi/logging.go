package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer. Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// reqLogger returns zlog tagged with the request id, if any.
func reqLogger(r *http.Request) zerolog.Logger {
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		return zlog.With().Str("request_id", rid).Logger()
	}
	return zlog
}

// accessLog logs one line per request at info, or warn for 5xx.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		l := reqLogger(r)
		ev := l.Info()
		if sr.status >= http.StatusInternalServerError {
			ev = l.Warn()
		}
		ev.Str("method", r.Method).Str("path", r.URL.Path).Int("status", sr.status).Dur("dur", time.Since(start)).Msg("request")
	})
}
