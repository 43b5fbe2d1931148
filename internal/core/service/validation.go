package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

const minPasswordLength = 6

var validate = validator.New()

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

// userFieldErrors checks the account fields shared by registration and admin
// creation. It returns nil when everything is valid.
func userFieldErrors(name, email, password string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if email == "" {
		fields["email"] = "email is required"
	} else if !validEmail(email) {
		fields["email"] = "email must be a valid email"
	}
	if len(password) < minPasswordLength {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// parseOptionalRole returns fallback for an empty value.
func parseOptionalRole(s string, fallback domain.Role) (domain.Role, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return domain.ParseRole(strings.ToLower(strings.TrimSpace(s)))
}
