package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/lms-g2/lms-api/docs"
	"github.com/lms-g2/lms-api/internal/api/handler"
	"github.com/lms-g2/lms-api/internal/api/middleware"
	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
)

const bodyLimit = "1M"

// Dependencies is everything the router needs. Mongo and Redis are only
// used by the readiness probe and may be nil.
type Dependencies struct {
	Logger      zerolog.Logger
	FrontendURL string

	Tokens      middleware.TokenVerifier
	Auth        ports.AuthService
	Users       ports.UserService
	Courses     ports.CourseService
	Enrollments ports.EnrollmentService

	Mongo *mongo.Database
	Redis *redis.Client

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	allowOrigin := deps.FrontendURL
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{allowOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "lms",
		Registerer: deps.Registerer,
	}))

	authenticate := middleware.Authenticate(deps.Tokens, deps.Logger)

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	courseHandler := handler.NewCourseHandler(deps.Courses)
	enrollmentHandler := handler.NewEnrollmentHandler(deps.Enrollments)
	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis, deps.Logger)

	// --- Probes and tooling (no auth required) ---
	e.GET("/", healthHandler.Status)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("", healthHandler.Status)

	// --- Auth ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authenticate)

	// --- Users (admin only) ---
	users := api.Group("/users", authenticate, middleware.RequireRoles(domain.RoleAdmin))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Courses ---
	teaching := middleware.RequireRoles(domain.RoleInstructor, domain.RoleAdmin)
	courses := api.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", courseHandler.Create, authenticate, teaching)
	courses.PUT("/:id", courseHandler.Update, authenticate, teaching)
	courses.DELETE("/:id", courseHandler.Delete, authenticate, teaching)

	// --- Enrollments ---
	enrollments := api.Group("/enrollments", authenticate)
	enrollments.GET("", enrollmentHandler.List)
	enrollments.POST("", enrollmentHandler.Enroll, middleware.RequireRoles(domain.RoleStudent, domain.RoleAdmin))
	enrollments.PUT("/:id", enrollmentHandler.UpdateStatus)
	enrollments.DELETE("/:id", enrollmentHandler.Delete)

	return e
}
