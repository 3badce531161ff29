package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boredapes/ctaplanner/internal/rest"
	"github.com/boredapes/ctaplanner/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signInRequest(t *testing.T, email string, password string) *http.Request {
	body, err := json.Marshal(SignInDTO{Email: email, Password: password})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewReader(body))
}

func TestHandler_SignIn(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		authErr    error
		wantStatus int
	}{
		{name: "valid credentials", email: test_utils.TestUserEmail, password: test_utils.TestUserPassword, wantStatus: http.StatusOK},
		{name: "missing password", email: test_utils.TestUserEmail, wantStatus: http.StatusBadRequest},
		{name: "invalid email", email: "officer", password: "x", wantStatus: http.StatusBadRequest},
		{name: "wrong password", email: test_utils.TestUserEmail, password: "wrong", wantStatus: http.StatusUnauthorized},
		{name: "provider down", email: test_utils.TestUserEmail, password: "x", authErr: errors.New("connection refused"), wantStatus: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			f := setup(t)
			f.auth.Err = tt.authErr
			handler := NewHandler(f.provider)
			rr := httptest.NewRecorder()

			// when
			handler.SignIn(rr, signInRequest(t, tt.email, tt.password))

			// then
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var dto SessionDTO
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
				assert.Equal(t, test_utils.TestUserEmail, dto.Email)
				assert.NotEmpty(t, dto.Token)
			} else {
				var errResponse rest.ErrorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResponse))
				assert.NotEmpty(t, errResponse.Error)
			}
		})
	}
}

func TestHandler_CurrentSessionAndSignOut(t *testing.T) {
	// given
	f := setup(t)
	handler := NewHandler(f.provider)
	rr := httptest.NewRecorder()
	handler.SignIn(rr, signInRequest(t, test_utils.TestUserEmail, test_utils.TestUserPassword))
	var dto SessionDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))

	authorized := func(method string) *http.Request {
		req := httptest.NewRequest(method, "/api/session", nil)
		req.Header.Set("Authorization", "Bearer "+dto.Token)
		return req
	}

	// when
	current := httptest.NewRecorder()
	handler.CurrentSession(current, authorized(http.MethodGet))
	signOut := httptest.NewRecorder()
	handler.SignOut(signOut, authorized(http.MethodDelete))
	afterSignOut := httptest.NewRecorder()
	handler.CurrentSession(afterSignOut, authorized(http.MethodGet))
	secondSignOut := httptest.NewRecorder()
	handler.SignOut(secondSignOut, authorized(http.MethodDelete))

	// then
	assert.Equal(t, http.StatusOK, current.Code)
	assert.Equal(t, http.StatusNoContent, signOut.Code)
	assert.Equal(t, http.StatusUnauthorized, afterSignOut.Code)
	assert.Equal(t, http.StatusNoContent, secondSignOut.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "bearer token-1")
	assert.Equal(t, "token-1", BearerToken(req))
}
