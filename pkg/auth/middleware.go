package auth

import (
	"net/http"
	"strings"
	"time"

	apperrors "liora/pkg/errors"
	httputil "liora/pkg/http"
	"liora/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type Middleware struct {
	tokens       *TokenService
	cookieName   string
	cookieSecure bool
	log          *logger.Logger
}

func NewMiddleware(tokens *TokenService, cookieName string, cookieSecure bool, log *logger.Logger) *Middleware {
	return &Middleware{
		tokens:       tokens,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

// Authenticate resolves claims from the Bearer header, then the auth cookie.
func (m *Middleware) Authenticate(r *http.Request) (*Claims, error) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if cookie, err := r.Cookie(m.cookieName); err == nil {
			token = cookie.Value
		}
	}
	return m.tokens.ValidateToken(token)
}

func (m *Middleware) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := m.Authenticate(r)
		if err != nil {
			m.reject(w, r, apperrors.Unauthorized("Not authorized, token failed"))
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims)), ps)
	}
}

// RequireRole authenticates and then checks the caller's role.
func (m *Middleware) RequireRole(role string, next httprouter.Handle) httprouter.Handle {
	return m.Require(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, _ := ClaimsFromContext(r.Context())
		if claims.Role != role {
			m.reject(w, r, apperrors.Forbidden("Only "+role+"s can perform this action"))
			return
		}
		next(w, r, ps)
	})
}

// SetCookie stores the session token in an HttpOnly cookie.
func (m *Middleware) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(m.tokens.TTL()),
	})
}

func (m *Middleware) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	m.log.WithContext(r.Context()).Debug("Request rejected by auth", "path", r.URL.Path, "code", err.Code)
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		m.log.Error("Failed to write auth error response", "error", writeErr)
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
