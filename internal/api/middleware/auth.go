package middleware

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/pkg/metrics"
)

// principalKey is the echo context key holding the resolved domain.Principal.
const principalKey = "principal"

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Authenticate resolves the caller from the Authorization header and stores
// the principal on the context. It never consults the user store, so a role
// change takes effect only when the user obtains a new token.
func Authenticate(tokens TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing_header").Inc()
				return domain.ErrMissingCredentials
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing_header").Inc()
				return domain.ErrMissingCredentials
			}

			principal, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					reason = "expired_token"
				}
				metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
				log.Debug().Err(err).Str("reason", reason).Str("path", c.Path()).Msg("token rejected")
				return domain.ErrInvalidToken
			}

			SetPrincipal(c, principal)
			return next(c)
		}
	}
}

// SetPrincipal stores p on the request context.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
