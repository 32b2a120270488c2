package middleware

import (
	"net/http"
	"time"

	"notepad/internal/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Logging writes one structured line per request. It must run inside
// Identify so the user id is visible.
func Logging(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var user interface{} = "anonymous"
			if id := auth.IdentityFromContext(r.Context()); id != nil {
				user = id.ID
			}

			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"status":      status,
				"duration":    time.Since(start).String(),
				"user_id":     user,
				"request_id":  chimw.GetReqID(r.Context()),
			})
			if status >= http.StatusInternalServerError {
				entry.Error("Request failed")
				return
			}
			entry.Info("Request handled")
		})
	}
}
