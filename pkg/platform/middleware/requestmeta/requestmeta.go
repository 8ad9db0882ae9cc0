package requestmeta

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"bmmhub/pkg/requestcontext"
)

// Inject stamps each request with an ID and a fixed request time. Downstream
// code reads both through pkg/requestcontext so a single request observes one
// consistent clock value.
func Inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
