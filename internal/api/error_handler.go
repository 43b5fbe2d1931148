package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

var kindStatus = map[error]int{
	domain.ErrUnauthenticated: http.StatusUnauthorized,
	domain.ErrForbidden:       http.StatusForbidden,
	domain.ErrNotFound:        http.StatusNotFound,
	domain.ErrConflict:        http.StatusConflict,
	domain.ErrValidation:      http.StatusBadRequest,
	domain.ErrInternal:        http.StatusInternalServerError,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs internal errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<kind>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Code: httpCode(he.Code)}
	}

	kind := domain.KindOf(err)
	status := kindStatus[kind]
	msg := domain.PublicMessage(err)

	if kind == domain.ErrInternal || msg == "" {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: domain.ErrInternal.Error()}
	}

	resp := errorResponse{Error: msg, Code: kind.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	return status, resp
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrValidation.Error()
	case http.StatusUnauthorized:
		return domain.ErrUnauthenticated.Error()
	case http.StatusForbidden:
		return domain.ErrForbidden.Error()
	case http.StatusNotFound:
		return domain.ErrNotFound.Error()
	case http.StatusConflict:
		return domain.ErrConflict.Error()
	}
	if status >= 500 {
		return domain.ErrInternal.Error()
	}
	return "http_error"
}
