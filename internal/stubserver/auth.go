package stubserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sofrahq/sofra-admin-session/internal/permissions"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// permissionsResponse is the response body for GET /users/{id}/permissions.
type permissionsResponse struct {
	Permissions []permissions.Grant `json:"permissions"`
}

// handleLogin authenticates a fixture user and returns a signed JWT.
//
// The token embeds the profile claims the client decodes locally, plus
// the permission keys as hints. The authoritative grant list still
// comes from the permissions endpoint.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user := s.findByCredentials(req.Email, req.Password)
	if user == nil {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.ID,
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),
		"exp":    now.Add(s.cfg.TokenTTL).Unix(),
		"name":   user.DisplayName,
		"email":  user.Email,
		"role":   user.Role,
		"active": user.IsActive,
		"perms":  permissions.Keys(user.Permissions),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.TokenTTL.Seconds()),
	})
}

// handlePermissions returns the grant list for a fixture user.
func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	user := s.findByID(chi.URLParam(r, "id"))
	if user == nil {
		writeNotFound(w, "unknown user")
		return
	}
	writeJSON(w, http.StatusOK, permissionsResponse{Permissions: user.Permissions})
}

// authMiddleware requires a valid bearer token signed with the stub's
// secret on protected routes. This is what gives the client's 401
// handling something real to react to.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		_, err := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})).Parse(raw,
			func(_ *jwt.Token) (any, error) { return []byte(s.cfg.JWTSecret), nil })
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
