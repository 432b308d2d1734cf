package v1

import (
	"net/http"
	"time"

	"go-contactform-backend/config"
	"go-contactform-backend/internal/delivery/http/middleware"
	"go-contactform-backend/internal/delivery/http/response"
	"go-contactform-backend/internal/domain"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.GlobalRateLimitMiddleware())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Public routes - the contact form gets its own, stricter limit
	// since every accepted submission sends mail.
	contact := v1.Group("")
	contact.Use(middleware.RateLimitMiddleware(middleware.ContactRateLimitConfig(
		deps.Config.RateLimitContactRequests,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
	)))
	NewContactHandler(contact, deps.ContactUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
