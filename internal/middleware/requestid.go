package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const requestIDKey ctxKey = 1

const (
	headerRequestID    = "X-Request-ID"
	maxClientRequestID = 64
)

// RequestID проставляет X-Request-ID и кладёт в контекст логгер с полем rid;
// обработчики берут его через zerolog.Ctx(r.Context()).
func RequestID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if !validClientID(rid) {
				rid = uuid.NewString()
			}
			ctx := context.WithValue(r.Context(), requestIDKey, rid)
			l := logger.With().Str("rid", rid).Logger()
			ctx = l.WithContext(ctx)
			w.Header().Set(headerRequestID, rid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// чужой id попадает в логи и заголовки: только короткий печатный ASCII
func validClientID(s string) bool {
	if s == "" || len(s) > maxClientRequestID {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func GetRequestID(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
