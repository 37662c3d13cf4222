package v1

import (
	"net/http"

	"go-whatscv-backend/config"
	"go-whatscv-backend/internal/delivery/http/middleware"
	"go-whatscv-backend/internal/delivery/http/response"
	"go-whatscv-backend/internal/domain"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	IngestionUC domain.IngestionUsecase
	CandidateUC domain.CandidateUsecase
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware())
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(deps.Config)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	NewCandidateHandler(v1, deps.CandidateUC)

	webhookGroup := v1.Group("")
	webhookGroup.Use(middleware.RateLimitMiddleware(middleware.WebhookRateLimitConfig(deps.Config)))
	{
		NewWebhookHandler(webhookGroup, deps.IngestionUC, deps.Config.WhatsAppVerifyToken)
	}

	return r
}
