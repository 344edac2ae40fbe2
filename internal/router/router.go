package router

import (
	"fmt"
	"strings"

	"github.com/astra-preschool/internal/cache"
	"github.com/astra-preschool/internal/config"
	adminhandlers "github.com/astra-preschool/internal/http/handlers/admin"
	publichandlers "github.com/astra-preschool/internal/http/handlers/public"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "astra"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	otpRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:otp", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many code requests",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.GET("/captcha", publicHandler.Captcha)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), publicHandler.Login)
			auth.POST("/otp/send", RateLimitMiddleware(redisClient, otpRule, KeyByIPAndJSONField("phone")), publicHandler.SendOtp)
			auth.POST("/otp/verify", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("phone")), publicHandler.VerifyOtp)
		}

		// Authenticated parent (and admin) routes.
		authed := apiV1.Group("")
		authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			authed.GET("/profile", publicHandler.Profile)
			authed.PUT("/profile/password", publicHandler.ChangePassword)

			authed.GET("/students", publicHandler.ListStudents)
			authed.GET("/students/:id", publicHandler.GetStudent)
			authed.GET("/students/:id/payments", publicHandler.StudentPayments)

			authed.POST("/payments", publicHandler.InitiatePayment)
			authed.GET("/payments", publicHandler.ListPayments)
			authed.GET("/payments/:id", publicHandler.GetPayment)
			authed.POST("/payments/:id/confirm", publicHandler.ConfirmPayment)
			authed.POST("/payments/:id/cancel", publicHandler.CancelPayment)
		}

		// Admin routes sit behind the role check and the casbin policy.
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), AdminRBACMiddleware(c.AuthzService))
		{
			admin.POST("/parents", adminHandler.CreateParent)
			admin.GET("/parents", adminHandler.ListParents)
			admin.GET("/parents/:id", adminHandler.GetParent)

			admin.POST("/students", adminHandler.CreateStudent)
			admin.GET("/students", adminHandler.ListStudents)
			admin.GET("/students/:id", adminHandler.GetStudent)
			admin.PUT("/students/:id", adminHandler.UpdateStudent)
			admin.DELETE("/students/:id", adminHandler.DeleteStudent)
			admin.POST("/students/:id/remind", adminHandler.RemindStudent)

			admin.GET("/payments", adminHandler.ListPayments)
			admin.GET("/payments/stats", adminHandler.PaymentStats)
			admin.POST("/payments/reconcile", adminHandler.ReconcileLedger)
			admin.GET("/payments/:id", adminHandler.GetPayment)
			admin.PUT("/payments/:id/verify", adminHandler.VerifyPayment)

			admin.POST("/admins", adminHandler.CreateAdmin)
			admin.GET("/admins", adminHandler.ListAdmins)

			admin.GET("/authz/roles", adminHandler.ListRoles)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
			admin.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
			admin.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
