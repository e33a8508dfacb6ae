package logutil

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type (
	statusRecorder struct {
		http.ResponseWriter
		status int
	}
)

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(buf []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(buf)
}

// Middleware attaches a request scoped logger to the context of every
// request and logs the outcome once the handler returns.
func Middleware(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With().Str("http.method", r.Method).Str("http.path", r.URL.Path).Logger()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(WithLogger(r.Context(), log)))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			var evt *zerolog.Event
			if rec.status >= http.StatusInternalServerError {
				evt = log.Error()
			} else {
				evt = log.Debug()
			}
			evt.Int("http.status", rec.status).Dur("elapsed", time.Since(start)).Msg("Request completed")
		})
	}
}
