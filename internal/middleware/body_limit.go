package middleware

import (
	"io"
	"net/http"
)

// MaxRequestBodyBytes bounds program specs, records and every other JSON body.
const MaxRequestBodyBytes = 1 << 20

// LimitRequestBody caps the body at maxBytes. Whatever the handler left unread
// is drained afterwards, up to the same cap, so the connection can be reused.
func LimitRequestBody(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			body := http.MaxBytesReader(w, r.Body, maxBytes)
			r.Body = body
			next.ServeHTTP(w, r)

			_, _ = io.Copy(io.Discard, body)
			_ = body.Close()
		})
	}
}
