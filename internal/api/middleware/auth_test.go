package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/service"
)

func newContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func mustNotReach(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokens := service.NewTokenService([]byte("secret"))
	signed, err := tokens.Issue("user-1", domain.RoleInstructor)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	c, rec := newContext("Bearer " + signed)
	called := false
	handler := Authenticate(tokens, zerolog.Nop())(func(c echo.Context) error {
		called = true
		p, ok := PrincipalFrom(c)
		if !ok {
			t.Fatalf("principal not set")
		}
		if p.SubjectID != "user-1" || p.Role != domain.RoleInstructor {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_SchemeIsCaseInsensitive(t *testing.T) {
	tokens := service.NewTokenService([]byte("secret"))
	signed, _ := tokens.Issue("user-1", domain.RoleStudent)

	c, _ := newContext("bearer " + signed)
	err := Authenticate(tokens, zerolog.Nop())(func(c echo.Context) error { return nil })(c)
	if err != nil {
		t.Fatalf("expected lowercase scheme to be accepted, got %v", err)
	}
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	tokens := service.NewTokenService([]byte("secret"))

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   ", "abc"} {
		c, _ := newContext(header)
		err := Authenticate(tokens, zerolog.Nop())(mustNotReach(t))(c)
		if !errors.Is(err, domain.ErrMissingCredentials) {
			t.Fatalf("header %q: expected ErrMissingCredentials, got %v", header, err)
		}
		if domain.KindOf(err) != domain.ErrUnauthenticated {
			t.Fatalf("header %q: expected unauthenticated kind", header)
		}
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	tokens := service.NewTokenService([]byte("secret"))
	forged, _ := service.NewTokenService([]byte("other")).Issue("user-1", domain.RoleAdmin)

	for _, token := range []string{"not-a-token", forged} {
		c, _ := newContext("Bearer " + token)
		err := Authenticate(tokens, zerolog.Nop())(mustNotReach(t))(c)
		if !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	}
}

func TestAuthenticate_ExpiredTokenIsUnauthenticated(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "user-1",
		"role": "student",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	c, _ := newContext("Bearer " + signed)
	err = Authenticate(service.NewTokenService([]byte("secret")), zerolog.Nop())(mustNotReach(t))(c)
	if !errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrInvalidToken only, got %v", err)
	}
}
