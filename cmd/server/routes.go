package main

import (
	"github.com/gin-gonic/gin"
	"visa-onboarding.backend/internal/interfaces/http/handlers"
	"visa-onboarding.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	invitationHandler *handlers.InvitationHandler
	onboardingHandler *handlers.OnboardingHandler
	visaHandler       *handlers.VisaHandler
	authMiddleware    gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Registration form checks its token before the account exists
		v1.GET("/invitations/:token", d.invitationHandler.Validate)

		// Employee routes
		employee := v1.Group("")
		employee.Use(d.authMiddleware, middleware.RequireEmployee())
		{
			employee.GET("/onboarding", d.onboardingHandler.GetOwn)
			employee.POST("/onboarding", d.onboardingHandler.Submit)
			employee.GET("/visa", d.visaHandler.GetOwn)
			employee.PUT("/visa/:type", middleware.IdempotencyMiddleware(), d.visaHandler.Upload)
		}

		// HR routes
		hr := v1.Group("/hr")
		hr.Use(d.authMiddleware, middleware.RequireHR())
		{
			hr.POST("/invitations", d.invitationHandler.Create)
			hr.GET("/invitations", d.invitationHandler.List)

			hr.GET("/applications", d.onboardingHandler.List)
			hr.GET("/applications/:employeeId", d.onboardingHandler.Get)
			hr.PUT("/applications/:employeeId/review", middleware.IdempotencyMiddleware(), d.onboardingHandler.Review)

			hr.GET("/visa", d.visaHandler.ListInProgress)
			hr.GET("/visa/:employeeId", d.visaHandler.GetEmployee)
			hr.PUT("/visa/:employeeId/:type/review", middleware.IdempotencyMiddleware(), d.visaHandler.Review)
		}
	}
}
