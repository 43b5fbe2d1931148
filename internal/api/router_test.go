package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/service"
	"github.com/lms-g2/lms-api/internal/infrastructure/db/memory"
)

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	users := memory.NewUserRepository()
	courses := memory.NewCourseRepository()
	enrollments := memory.NewEnrollmentRepository()
	tokens := service.NewTokenService([]byte("router-test-secret"))
	hasher := service.NewPasswordHasher(service.HasherBcrypt)

	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		Logger:      log,
		Tokens:      tokens,
		Auth:        service.NewAuthService(users, tokens, hasher, log),
		Users:       service.NewUserService(users, hasher, nil, log),
		Courses:     service.NewCourseService(courses, nil, nil, log),
		Enrollments: service.NewEnrollmentService(enrollments, courses, users, log),
		Registerer:  reg,
		Gatherer:    reg,
	})
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and id.
func (s *testServer) register(name, role string) (string, string) {
	s.t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":"%s@example.com","password":"secret1","role":%q}`, name, name, role)
	rec := s.do(http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: expected 201, got %d: %s", name, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		s.t.Fatalf("decode register response: %v", err)
	}
	return resp.Token, resp.User.ID
}

func (s *testServer) createCourse(token, title string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/courses", token, fmt.Sprintf(`{"title":%q}`, title))
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("create course: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var course struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
		s.t.Fatalf("decode course: %v", err)
	}
	return course.ID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestRouter_StatusRoutes(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/", "/api", "/health"} {
		rec := s.do(http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Fatalf("GET %s: unexpected response %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_GatedRouteWithoutHeaderIs401(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/users", "/api/auth/me", "/api/enrollments"} {
		rec := s.do(http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s: expected 401, got %d", path, rec.Code)
		}
		if resp := decodeError(t, rec); resp.Code != "unauthenticated" {
			t.Fatalf("GET %s: unexpected body %+v", path, resp)
		}
	}
}

func TestRouter_GarbageTokenIs401(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/auth/me", "not.a.token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_AdminOnlyRoute(t *testing.T) {
	s := newTestServer(t)
	studentToken, _ := s.register("stu", "student")
	adminToken, _ := s.register("root", "admin")

	rec := s.do(http.MethodGet, "/api/users", studentToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student: expected 403, got %d", rec.Code)
	}

	rec = s.do(http.MethodGet, "/api/users", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rec.Code)
	}
	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("user list leaked password data: %s", rec.Body.String())
	}
}

func TestRouter_CourseDeleteGates(t *testing.T) {
	s := newTestServer(t)
	instructorToken, _ := s.register("teach", "instructor")
	otherInstructorToken, _ := s.register("teach2", "instructor")
	studentToken, _ := s.register("stu", "student")
	adminToken, _ := s.register("root", "admin")

	courseID := s.createCourse(instructorToken, "Distributed Systems")

	if rec := s.do(http.MethodDelete, "/api/courses/"+courseID, studentToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("student delete: expected 403, got %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/api/courses/"+courseID, otherInstructorToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("other instructor delete: expected 403, got %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/api/courses/missing", otherInstructorToken, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing course: expected 404, got %d", rec.Code)
	}

	rec := s.do(http.MethodDelete, "/api/courses/"+courseID, adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/api/courses/"+courseID, "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted course: expected 404, got %d", rec.Code)
	}
}

func TestRouter_ConcurrentEnrollOverHTTP(t *testing.T) {
	s := newTestServer(t)
	instructorToken, _ := s.register("teach", "instructor")
	studentToken, _ := s.register("stu", "student")
	courseID := s.createCourse(instructorToken, "Databases")

	body := fmt.Sprintf(`{"course_id":%q}`, courseID)
	recs := make([]*httptest.ResponseRecorder, 2)
	var wg sync.WaitGroup
	for i := range recs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i] = s.do(http.MethodPost, "/api/enrollments", studentToken, body)
		}(i)
	}
	wg.Wait()

	var created, conflict *httptest.ResponseRecorder
	for _, rec := range recs {
		switch rec.Code {
		case http.StatusCreated:
			created = rec
		case http.StatusConflict:
			conflict = rec
		default:
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
	}
	if created == nil || conflict == nil {
		t.Fatalf("expected one 201 and one 409, got %d and %d", recs[0].Code, recs[1].Code)
	}

	var enrollment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &enrollment); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if enrollment.ID == "" || enrollment.Status != "enrolled" {
		t.Fatalf("unexpected enrollment %+v", enrollment)
	}
	if resp := decodeError(t, conflict); !strings.Contains(resp.Error, "already enrolled") || resp.Code != "conflict" {
		t.Fatalf("unexpected conflict body %+v", resp)
	}
}

func TestRouter_InstructorCannotEnroll(t *testing.T) {
	s := newTestServer(t)
	instructorToken, _ := s.register("teach", "instructor")
	courseID := s.createCourse(instructorToken, "Compilers")

	rec := s.do(http.MethodPost, "/api/enrollments", instructorToken, fmt.Sprintf(`{"course_id":%q}`, courseID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_AdminEnrollsOnlyStudents(t *testing.T) {
	s := newTestServer(t)
	instructorToken, instructorID := s.register("teach", "instructor")
	_, studentID := s.register("stu", "student")
	adminToken, _ := s.register("root", "admin")
	courseID := s.createCourse(instructorToken, "Networks")

	rec := s.do(http.MethodPost, "/api/enrollments", adminToken, fmt.Sprintf(`{"course_id":%q,"student_id":%q}`, courseID, instructorID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("instructor target: expected 400, got %d", rec.Code)
	}
	rec = s.do(http.MethodPost, "/api/enrollments", adminToken, fmt.Sprintf(`{"course_id":%q,"student_id":"ghost"}`, courseID))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown target: expected 404, got %d", rec.Code)
	}
	rec = s.do(http.MethodPost, "/api/enrollments", adminToken, fmt.Sprintf(`{"courseId":%q,"studentId":%q}`, courseID, studentID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("student target: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ValidationErrorCarriesFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/register", "", `{"name":"x","email":"bad","password":"secret1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "validation_failed" || resp.Fields["email"] == "" {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestRouter_DuplicateEmailIs409(t *testing.T) {
	s := newTestServer(t)
	s.register("dup", "student")

	rec := s.do(http.MethodPost, "/api/auth/register", "", `{"name":"dup","email":"dup@example.com","password":"secret1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRouter_LoginRoundTrip(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "student")

	rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"alice@example.com","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "invalid credentials" {
		t.Fatalf("unexpected body %+v", resp)
	}

	rec = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"alice@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	rec = s.do(http.MethodGet, "/api/auth/me", resp.Token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Fatalf("me: unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", "", "")

	rec := s.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "lms_requests_total") {
		t.Fatalf("expected request metrics in exposition")
	}
}
