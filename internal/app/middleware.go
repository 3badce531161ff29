package app

import (
	"net/http"
	"strings"

	"github.com/boredapes/ctaplanner/internal/rest"
	"github.com/boredapes/ctaplanner/pkg/session"
	"github.com/boredapes/ctaplanner/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Browsers cannot set headers on a WebSocket handshake, so the live feed may pass the
// token as a query parameter instead.
const liveTokenParam = "access_token"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			log.Debugf("%s %s", req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})
}

// RequireSession resolves the bearer token into the request context. Requests without a
// live session are rejected.
func RequireSession(gate *session.Gate) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := session.BearerToken(req)
			if token == "" && strings.HasSuffix(req.URL.Path, "/live") {
				token = req.URL.Query().Get(liveTokenParam)
			}

			s, err := gate.Authorize(token)
			if err != nil {
				log.Debugf("rejected %s %s: %v", req.Method, req.URL.Path, err)
				rest.WriteError(w, http.StatusUnauthorized, err.Error(), "")
				return
			}

			ctx := session.WithSession(req.Context(), s)
			ctx = user.WithUser(ctx, user.User{Email: s.Email})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
