package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"notepad/internal/auth"
	"notepad/internal/session"

	"github.com/sirupsen/logrus"
)

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Sessions loads the guest session named by the session cookie and saves it
// once the handler returns. Guests without a session get a new one; requests
// with a valid credential only get one if the cookie already exists.
func Sessions(store session.Store, opts SessionOptions, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var sess *session.Session

			if c, err := r.Cookie(opts.CookieName); err == nil && c.Value != "" {
				s, err := store.Get(ctx, c.Value)
				switch {
				case err == nil:
					sess = s
				case !errors.Is(err, session.ErrNotFound):
					log.WithError(err).Error("Failed to load session")
				}
			}

			if sess == nil && auth.IdentityFromContext(ctx) == nil {
				s, err := store.Create(ctx)
				if err != nil {
					log.WithError(err).Error("Failed to create session")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte(`{"error":"Session unavailable"}`))
					return
				}
				sess = s
				http.SetCookie(w, &http.Cookie{
					Name:     opts.CookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(opts.TTL.Seconds()),
				})
			}

			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(ctx, sess)))

			// The client may already be gone; the session must still be written.
			if err := store.Save(context.WithoutCancel(ctx), sess); err != nil {
				log.WithError(err).WithField("session_id", sess.ID).Error("Failed to save session")
			}
		})
	}
}
