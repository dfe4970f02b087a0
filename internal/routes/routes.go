package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fitshop_backend/docs"
	"fitshop_backend/internal/handlers"
	"fitshop_backend/internal/logger"
)

// RegisterRoutes mounts every HTTP route under /api/v1 plus the swagger UI.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authMW gin.HandlerFunc,
) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.FileHandler.RegisterRoutes(api)
		appHandlers.PaymentHandler.RegisterRoutes(api)
		appHandlers.ProfileHandler.RegisterRoutes(api, authMW)
		appHandlers.ProductHandler.RegisterRoutes(api, authMW)
		appHandlers.OrderHandler.RegisterRoutes(api, authMW)
		appHandlers.DiscountHandler.RegisterRoutes(api, authMW)
		appHandlers.MediaAssetHandler.RegisterRoutes(api, authMW)
	}

	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logger.Info("HTTP routes registered", "base", "/api/v1")
}
