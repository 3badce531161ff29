package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/boredapes/ctaplanner/internal/rest"
	log "github.com/sirupsen/logrus"
)

type SignInDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionDTO struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type Handler struct {
	provider *Provider
}

func NewHandler(provider *Provider) *Handler {
	return &Handler{provider: provider}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SignIn godoc
// @Summary Sign in
// @Description Open a session for the given credentials
// @Tags Session
// @Accept json
// @Produce json
// @Param credentials body SignInDTO true "Credentials"
// @Success 200 {object} SessionDTO
// @Failure 400 {object} rest.ErrorResponse "Missing credentials or invalid email format"
// @Failure 401 {object} rest.ErrorResponse "Invalid login credentials"
// @Failure 502 {object} rest.ErrorResponse "Identity provider unavailable"
// @Router /api/session [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing in")
	var dto SignInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	s, err := h.provider.SignIn(r.Context(), dto.Email, dto.Password)
	if err != nil {
		var authErr *AuthError
		switch {
		case errors.Is(err, ErrMissingCredentials), errors.Is(err, ErrInvalidEmail):
			rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, ErrInvalidCredentials):
			rest.WriteError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error(), "")
		case errors.As(err, &authErr):
			rest.WriteError(w, http.StatusBadGateway, "an error occurred during sign in", authErr.Err.Error())
		default:
			rest.WriteError(w, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, SessionDTO{Token: s.Token, Email: s.Email})
}

func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.provider.Session(BearerToken(r))
	if !ok {
		rest.WriteError(w, http.StatusUnauthorized, ErrNoSession.Error(), "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, SessionDTO{Token: s.Token, Email: s.Email})
}

// SignOut ends the session. Failures are only logged; the session, if any, stays until
// the provider ends it.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.SignOut(r.Context(), BearerToken(r)); err != nil {
		log.Warnf("sign out failed: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
