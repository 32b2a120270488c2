package middleware

import (
	"errors"
	"net/http"

	"notepad/internal/auth"

	"github.com/sirupsen/logrus"
)

// Identify attaches the credential's identity to the request context. It
// never rejects: missing or invalid credentials simply leave the request in
// guest mode.
func Identify(verifier *auth.Verifier, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := verifier.Verify(auth.FromRequest(r))
			if err != nil {
				if errors.Is(err, auth.ErrInvalidCredential) {
					log.WithError(err).Debug("Ignoring invalid credential")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
