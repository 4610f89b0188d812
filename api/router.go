package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/techdoc-assistant/api/handler"
	"github.com/fyerfyer/techdoc-assistant/api/middleware"
	"github.com/fyerfyer/techdoc-assistant/api/model"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(askHandler *handler.AskHandler) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())

	api := router.Group("/api")
	{
		// 回答问题 - POST /api/ask
		api.POST("/ask", askHandler.Ask)

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, model.HealthResponse{Status: "ok"})
		})
	}

	return router
}
