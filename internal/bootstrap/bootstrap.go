package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/zigatrcek/openacademy/internal/app/controllers"
	appMigrations "github.com/zigatrcek/openacademy/internal/app/migrations"
	appRepos "github.com/zigatrcek/openacademy/internal/app/repositories"
	appRoutes "github.com/zigatrcek/openacademy/internal/app/routes"
	appServices "github.com/zigatrcek/openacademy/internal/app/services"
	"github.com/zigatrcek/openacademy/internal/config"
	"github.com/zigatrcek/openacademy/internal/db"
	appMiddleware "github.com/zigatrcek/openacademy/internal/middleware"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	pkgAuth "github.com/zigatrcek/openacademy/internal/pkg/auth"
	"github.com/zigatrcek/openacademy/internal/pkg/helpers"
	"github.com/zigatrcek/openacademy/internal/pkg/logger"
	"github.com/zigatrcek/openacademy/internal/pkg/validation"
	"github.com/zigatrcek/openacademy/internal/seed"
)

// Dependencies is the application registry: every repository, service and controller is
// built once here and handed to the router
type Dependencies struct {
	CourseService     appServices.CourseService
	SessionService    appServices.SessionService
	PartnerService    appServices.PartnerService
	AuthService       *appServices.AuthService
	CourseController  *appControllers.CourseController
	SessionController *appControllers.SessionController
	PartnerController *appControllers.PartnerController
	AuthController    *appControllers.AuthController
	HealthController  *appControllers.HealthController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and creates default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, database.Pool, cfg, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.CourseService = appServices.NewCourseService(
		deps.Repos.CourseRepository,
		database,
		lgr.With().Str("service", "course").Logger(),
	)
	deps.SessionService = appServices.NewSessionService(
		deps.Repos.SessionRepository,
		deps.Repos.CourseRepository,
		deps.Repos.PartnerRepository,
		database,
		lgr.With().Str("service", "session").Logger(),
	)
	deps.PartnerService = appServices.NewPartnerService(
		deps.Repos.PartnerRepository,
		deps.Repos.SessionRepository,
		database,
		lgr.With().Str("service", "partner").Logger(),
	)
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		lgr.With().Str("service", "auth").Logger(),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.CourseController = appControllers.NewCourseController(deps.CourseService)
	deps.SessionController = appControllers.NewSessionController(deps.SessionService)
	deps.PartnerController = appControllers.NewPartnerController(deps.PartnerService)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.HealthController = appControllers.NewHealthController(database)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.Register(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CourseController,
		deps.SessionController,
		deps.PartnerController,
		deps.HealthController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", deps.HealthController.Ping)
	router.NoRoute(func(c *gin.Context) {
		appMiddleware.HandleAPIError(c, apperrors.NewResourceNotFoundError("Route not found"))
	})

	return router, nil
}
