package app

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fjpedrosa/caetaria-sub000/domain"
	"github.com/fjpedrosa/caetaria-sub000/internal/config"
	"github.com/fjpedrosa/caetaria-sub000/internal/infrastructure/database"
	"github.com/fjpedrosa/caetaria-sub000/internal/infrastructure/notifications"
	"github.com/fjpedrosa/caetaria-sub000/internal/infrastructure/repositories"
	"github.com/fjpedrosa/caetaria-sub000/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Repositories
	SessionRepo domain.SessionRepository

	// Services
	NotificationSvc domain.NotificationService
	VerificationSvc domain.VerificationService
	SessionSvc      domain.SessionService
	OnboardingSvc   domain.OnboardingService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	container := &Container{Config: cfg, Logger: logger}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	if err := container.initRedis(); err != nil {
		return nil, err
	}

	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() error {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	return nil
}

func (c *Container) initRepositories() {
	c.SessionRepo = repositories.NewSessionRepository(c.DB)
}

func (c *Container) initServices() {
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
	)

	verificationConfig := services.VerificationConfig{
		Length:       c.Config.VerificationLength,
		TTL:          c.Config.VerificationTTL,
		MaxAttempts:  c.Config.VerificationMaxAttempts,
		ResendWindow: c.Config.VerificationResendWindow,
	}
	c.VerificationSvc = services.NewVerificationService(c.NotificationSvc, c.RedisClient, verificationConfig)

	c.SessionSvc = services.NewSessionService(c.SessionRepo, c.Logger)
	c.OnboardingSvc = services.NewOnboardingService(c.SessionRepo, c.Logger)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
