// Package middleware provides standard net/http middlewares built on the
// multiform request abstraction.
package middleware

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/iaconlabs/multiform"
)

// Resolver produces the multipart view of a request. The multipart body is
// already parsed by the engine or stdlib when the three maps are built; see
// the adapter packages for implementations.
type Resolver interface {
	Resolve(r *http.Request) (*multiform.MultipartRequest, error)
}

// Multipart returns a middleware that resolves multipart/form-data requests
// and stores the resulting multiform.Request in the context under
// multiform.RequestKey. Non-multipart requests pass through untouched;
// malformed multipart bodies get a 400.
func Multipart(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasMultipartContentType(r) {
				next.ServeHTTP(w, r)
				return
			}

			req, err := resolver.Resolve(r)
			if err != nil {
				sendJSONError(w, "Invalid multipart request", http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, multiform.WithRequest(r, req))
		})
	}
}

func hasMultipartContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "multipart/")
}

// sendJSONError sends a simple structured JSON error message.
func sendJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
