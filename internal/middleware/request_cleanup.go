package middleware

import (
	"io"
	"net/http"
)

// maxDrainBytes bounds the unread body drained after a handler returns, a
// client streaming more than that gets its connection closed instead.
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest drains what the handler left of the request body, so
// the keep-alive connection can be reused, and closes it.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
				_ = r.Body.Close()
			}
		})
	}
}
