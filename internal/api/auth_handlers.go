package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"notepad/internal/accounts"
	"notepad/internal/auth"
	"notepad/internal/session"
)

type authResponse struct {
	User     interface{} `json:"user"`
	Token    string      `json:"token"`
	Migrated int         `json:"migrated"`
}

func registerFlow(h *Handlers, r *http.Request, req accounts.CredentialsRequest) (*accounts.AuthResult, error) {
	return h.accounts.Register(r.Context(), req, session.FromContext(r.Context()))
}

func loginFlow(h *Handlers, r *http.Request, req accounts.CredentialsRequest) (*accounts.AuthResult, error) {
	return h.accounts.Login(r.Context(), req, session.FromContext(r.Context()))
}

// authenticate runs a login or registration and issues the credential cookie.
// It returns the HTTP status and message to report on failure.
func (h *Handlers) authenticate(w http.ResponseWriter, r *http.Request, req accounts.CredentialsRequest, registering bool) (*accounts.AuthResult, int, string) {
	if err := accounts.CheckSwitch(auth.IdentityFromContext(r.Context()), req.Email, registering); err != nil {
		return nil, http.StatusConflict, "Already signed in, log out first"
	}

	flow := loginFlow
	if registering {
		flow = registerFlow
	}

	res, err := flow(h, r, req)
	if err != nil {
		var verr *accounts.ValidationError
		switch {
		case errors.As(err, &verr):
			return nil, http.StatusBadRequest, "Email and a password of at least 6 characters required"
		case errors.Is(err, accounts.ErrEmailTaken):
			return nil, http.StatusConflict, "Email already exists"
		case errors.Is(err, accounts.ErrInvalidCredentials):
			return nil, http.StatusUnauthorized, "Invalid credentials"
		}
		h.log.WithError(err).WithField("email", req.Email).Error("Authentication failed")
		if registering {
			return nil, http.StatusInternalServerError, "Registration failed"
		}
		return nil, http.StatusInternalServerError, "Login failed"
	}

	auth.SetCredentialCookie(w, res.Token, h.tokenTTL, h.secureCookie)
	return res, 0, ""
}

func (h *Handlers) APIRegister(w http.ResponseWriter, r *http.Request) {
	h.apiAuth(w, r, true)
}

func (h *Handlers) APILogin(w http.ResponseWriter, r *http.Request) {
	h.apiAuth(w, r, false)
}

func (h *Handlers) apiAuth(w http.ResponseWriter, r *http.Request, registering bool) {
	var req accounts.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, status, msg := h.authenticate(w, r, req, registering)
	if res == nil {
		writeError(w, status, msg)
		return
	}

	code := http.StatusOK
	if registering {
		code = http.StatusCreated
	}
	writeJSON(w, code, authResponse{User: res.User, Token: res.Token, Migrated: res.Migration.Migrated})
}

func (h *Handlers) FormRegister(w http.ResponseWriter, r *http.Request) {
	h.formAuth(w, r, true, "/register")
}

func (h *Handlers) FormLogin(w http.ResponseWriter, r *http.Request) {
	h.formAuth(w, r, false, "/login")
}

func (h *Handlers) formAuth(w http.ResponseWriter, r *http.Request, registering bool, back string) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, back+"?error="+url.QueryEscape("Invalid form"), http.StatusSeeOther)
		return
	}
	req := accounts.CredentialsRequest{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}

	if res, _, msg := h.authenticate(w, r, req, registering); res == nil {
		http.Redirect(w, r, back+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCredentialCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) APILogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCredentialCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
