package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/lms-g2/lms-api/internal/api"
	"github.com/lms-g2/lms-api/internal/core/ports"
	"github.com/lms-g2/lms-api/internal/core/service"
	"github.com/lms-g2/lms-api/internal/infrastructure/db/memory"
	"github.com/lms-g2/lms-api/internal/infrastructure/db/mongo"
	redisdb "github.com/lms-g2/lms-api/internal/infrastructure/db/redis"
	"github.com/lms-g2/lms-api/internal/infrastructure/queue"
	"github.com/lms-g2/lms-api/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.close()

		if cfg.JWTSecret == "" {
			log.Warn().Msg("JWT_SECRET is not set; registration and login will fail")
		}

		tokens := service.NewTokenService([]byte(cfg.JWTSecret))
		hasher := service.NewPasswordHasher(cfg.PasswordHasher)

		dispatcher := queue.NewDispatcher(cfg.CleanupWorkers, service.NewCleanupService(st.enrollments, log), log)
		dispatcher.Start()

		e := api.NewRouter(api.Dependencies{
			Logger:      log,
			FrontendURL: cfg.FrontendURL,
			Tokens:      tokens,
			Auth:        service.NewAuthService(st.users, tokens, hasher, log),
			Users:       service.NewUserService(st.users, hasher, dispatcher, log),
			Courses:     service.NewCourseService(st.courses, st.cache, dispatcher, log),
			Enrollments: service.NewEnrollmentService(st.enrollments, st.courses, st.users, log),
			Mongo:       st.db,
			Redis:       st.rdb,
		})

		serverErr := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
			if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		select {
		case err := <-serverErr:
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if stopErr := dispatcher.Stop(stopCtx); stopErr != nil {
				log.Error().Err(stopErr).Msg("cleanup workers did not drain")
			}
			return fmt.Errorf("server: %w", err)
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}

		if err := dispatcher.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("cleanup workers did not drain")
		}
		log.Info().Msg("server stopped")
		return nil
	},
}

// stores holds the repositories selected by STORE_DRIVER plus the optional
// course cache. db and rdb are nil when the matching backend is not in use.
type stores struct {
	users       ports.UserRepository
	courses     ports.CourseRepository
	enrollments ports.EnrollmentRepository
	cache       ports.CourseCache

	db      *mongodriver.Database
	rdb     *redis.Client
	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		st.users = memory.NewUserRepository()
		st.courses = memory.NewCourseRepository()
		st.enrollments = memory.NewEnrollmentRepository()
		log.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			AppName:     cfg.Mongo.AppName,
			Timeout:     cfg.Mongo.Timeout,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
			MinPoolSize: cfg.Mongo.MinPoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		st.closers = append(st.closers, func() { _ = client.Disconnect(context.Background()) })

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			st.close()
			return nil, err
		}
		st.db = db
		st.users = mongo.NewUserRepository(db)
		st.courses = mongo.NewCourseRepository(db)
		st.enrollments = mongo.NewEnrollmentRepository(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			st.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		st.closers = append(st.closers, func() { _ = rdb.Close() })
		st.rdb = rdb
		st.cache = redisdb.NewCourseCache(rdb, cfg.CourseCacheTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("course cache enabled")
	}

	return st, nil
}
