package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fjpedrosa/caetaria-sub000/internal/config"
	httpx "github.com/fjpedrosa/caetaria-sub000/internal/http"
	"github.com/fjpedrosa/caetaria-sub000/internal/http/handlers"
)

func Run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	container, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	sessionH := handlers.NewSessionHandlers(container.OnboardingSvc, container.SessionSvc)
	verificationH := handlers.NewVerificationHandlers(container.VerificationSvc, container.OnboardingSvc)

	r := httpx.BuildRouter(sessionH, verificationH)

	monitor := NewCleanupMonitor(container.SessionSvc, logger)
	if err := monitor.Start(cfg.CleanupSchedule); err != nil {
		return err
	}
	defer monitor.Stop()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}
