package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
)

type EnrollmentHandler struct {
	service ports.EnrollmentService
}

func NewEnrollmentHandler(service ports.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Enroll handles POST /api/enrollments.
//
// @Summary      Enroll in a course
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      enrollRequest  true  "Course to join"
// @Success      201   {object}  domain.Enrollment
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/enrollments [post]
func (h *EnrollmentHandler) Enroll(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req enrollRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	enrollment, err := h.service.Enroll(c.Request().Context(), principal, ports.EnrollInput{
		CourseID:  req.courseID(),
		StudentID: req.studentID(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, enrollment)
}

// List handles GET /api/enrollments. Students only ever see their own.
//
// @Summary      List enrollments
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        course_id   query     string  false  "Filter by course"
// @Param        student_id  query     string  false  "Filter by student"
// @Param        status      query     string  false  "Filter by status"
// @Success      200         {array}   domain.Enrollment
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /api/enrollments [get]
func (h *EnrollmentHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	enrollments, err := h.service.List(c.Request().Context(), principal, ports.EnrollmentFilter{
		CourseID:  c.QueryParam("course_id"),
		StudentID: c.QueryParam("student_id"),
		Status:    domain.EnrollmentStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, enrollments)
}

// UpdateStatus handles PUT /api/enrollments/:id.
//
// @Summary      Change enrollment status
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Enrollment ID"
// @Param        body  body      updateEnrollmentRequest  true  "New status"
// @Success      200   {object}  domain.Enrollment
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/enrollments/{id} [put]
func (h *EnrollmentHandler) UpdateStatus(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateEnrollmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	enrollment, err := h.service.UpdateStatus(c.Request().Context(), principal, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, enrollment)
}

// Delete handles DELETE /api/enrollments/:id.
//
// @Summary      Remove an enrollment
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Enrollment ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "enrollment deleted"})
}
