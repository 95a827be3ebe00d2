package middleware

import (
	"log"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logger logs method, path, status, size and latency of every request,
// tagged with the request id when chi's RequestID middleware ran first.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		reqID := chimw.GetReqID(r.Context())
		log.Printf("[%s] %s %s %d %dB %v", reqID, r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start))
	})
}
