package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sharkfund/sharkfund-backend/config"
	"github.com/sharkfund/sharkfund-backend/internal/app/controller"
	"github.com/sharkfund/sharkfund-backend/internal/middleware"
)

type Router struct {
	recoveryController *controller.PasswordRecoveryController
	config             *config.Config
}

func NewRouter(
	recoveryController *controller.PasswordRecoveryController,
	cfg *config.Config,
) *Router {
	return &Router{
		recoveryController: recoveryController,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "SharkFund API is running",
		})
	})

	// Trailing slashes preserved for compatibility with existing clients.
	v1 := router.Group("/api/v1")
	{
		v1.POST("/forget-password/", r.recoveryController.ForgetPassword)
		v1.POST("/verify-otp/", r.recoveryController.VerifyOTP)
		v1.POST("/reset-password/", r.recoveryController.ResetPassword)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
