package multiform

import (
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery returns a middleware that recovers from panics, logs the error,
// and returns an Internal Server Error (500) to the client. The
// uninitialized-multipart fault gets a stable error body so misconfigured
// pipelines are easy to spot. If stack is true, the stack trace is included
// in the log and response.
func Recovery(stack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					message := fmt.Sprintf("PANIC RECOVERED: %v", rec)
					if stack {
						message = fmt.Sprintf("%s\n\n%s", message, string(debug.Stack()))
					}
					log.Info(message)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)

					body := `{"error": "Internal Server Error"}`
					if err, ok := rec.(error); ok && errors.Is(err, ErrNotInitialized) {
						body = fmt.Sprintf(`{"error": %q}`, ErrNotInitialized.Error())
					} else if stack {
						body = fmt.Sprintf(`{"error": %q}`, message)
					}
					_, _ = w.Write([]byte(body))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
