package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"notepad/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

const CookieName = "token"

// Claims is the signed payload of a credential.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier issues and validates HS256 credentials.
type Verifier struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewVerifier(secret string, expiration time.Duration) *Verifier {
	return &Verifier{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

func (v *Verifier) Issue(id models.Identity) (string, error) {
	now := v.now()
	claims := Claims{
		ID:    id.ID,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.expiration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
func (v *Verifier) Verify(token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrMissingCredential
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !parsed.Valid {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if claims.ID <= 0 {
		return models.Identity{}, fmt.Errorf("%w: missing account id", ErrInvalidCredential)
	}

	return models.Identity{ID: claims.ID, Email: claims.Email}, nil
}

// FromRequest extracts the credential from the token cookie, falling back to
// an Authorization bearer header.
func FromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SetCredentialCookie sets the credential cookie on the response
func SetCredentialCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// ClearCredentialCookie clears the credential cookie
func ClearCredentialCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
