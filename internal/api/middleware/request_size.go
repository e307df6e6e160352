package middleware

import "net/http"

const (
	// JSONMaxBodySize bounds every JSON request body.
	JSONMaxBodySize int64 = 1 << 20

	// UploadMaxBodySize bounds multipart media uploads.
	UploadMaxBodySize int64 = 25 << 20
)

// RequestSize caps the request body; reads past the limit fail and
// handlers answer 413 or 400.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
