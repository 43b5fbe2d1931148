package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/lms-g2/lms-api/internal/api/middleware"
	"github.com/lms-g2/lms-api/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Authenticate
// middleware. Its absence means the route was registered without it, which
// is reported as unauthenticated.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrMissingCredentials
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs struct
// validation on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError(map[string]string{"body": "invalid payload"})
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
