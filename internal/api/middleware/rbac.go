package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/pkg/metrics"
)

// RequireRoles admits only principals whose role is in allowedRoles. It must
// run after Authenticate; a request without a principal is unauthenticated,
// never forbidden.
func RequireRoles(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrMissingCredentials
			}
			if _, ok := allowed[principal.Role]; !ok {
				metrics.AuthzDenialsTotal.WithLabelValues("role").Inc()
				return domain.ErrAccessDenied
			}
			return next(c)
		}
	}
}
