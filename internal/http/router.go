package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/fjpedrosa/caetaria-sub000/internal/http/handlers"
)

func BuildRouter(sh *handlers.SessionHandlers, vh *handlers.VerificationHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	ob := r.Group("/onboarding")
	ob.POST("/start", sh.Start)
	ob.POST("/recover", sh.Recover)
	ob.GET("/analytics", sh.Analytics)

	sess := ob.Group("/sessions/:id")
	sess.GET("", sh.Get)
	sess.POST("/advance", sh.Advance)
	sess.POST("/complete", sh.Complete)
	sess.POST("/abandon", sh.Abandon)
	sess.POST("/pause", sh.Pause)
	sess.POST("/resume", sh.Resume)
	sess.POST("/sync", sh.Sync)
	sess.POST("/ab-variant", sh.RecordVariant)
	sess.GET("/summary", sh.Summary)
	sess.POST("/verification/send", vh.SendCode)
	sess.POST("/verification/verify", vh.VerifyCode)

	return r
}
