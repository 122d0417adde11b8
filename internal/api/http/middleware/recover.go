package middleware

import (
	"fmt"
	"net/http"

	"github.com/dtroode/farmgate-identity/internal/api/http/handler"
	"github.com/dtroode/farmgate-identity/internal/logger"
)

// Recover turns a panicking handler into a 500 response.
func Recover(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					handler.WriteError(w, log, fmt.Errorf("panic: %v", p))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
