package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// LimitBytes caps request bodies at n bytes; n <= 0 disables the cap.
func LimitBytes(n int64) func(http.Handler) http.Handler {
	if n <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimw.RequestSize(n)
}
