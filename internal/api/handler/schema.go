package handler

import "github.com/lms-g2/lms-api/internal/core/domain"

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=student instructor admin"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type meResponse struct {
	User *domain.User `json:"user"`
}

// --- Users ---

type createUserRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=student instructor admin"`
}

type updateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=1"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role"     validate:"omitempty,oneof=student instructor admin"`
}

// --- Courses ---

type createCourseRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
}

type updateCourseRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// --- Enrollments ---

// enrollRequest accepts both snake_case and the camelCase names older
// clients send.
type enrollRequest struct {
	CourseID       string `json:"course_id"  validate:"required_without=CourseIDCamel"`
	StudentID      string `json:"student_id"`
	CourseIDCamel  string `json:"courseId"`
	StudentIDCamel string `json:"studentId"`
}

func (r enrollRequest) courseID() string {
	if r.CourseID != "" {
		return r.CourseID
	}
	return r.CourseIDCamel
}

func (r enrollRequest) studentID() string {
	if r.StudentID != "" {
		return r.StudentID
	}
	return r.StudentIDCamel
}

type updateEnrollmentRequest struct {
	Status string `json:"status" validate:"required"`
}
