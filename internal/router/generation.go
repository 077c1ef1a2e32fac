package router

import (
	"promptgate/internal/handler"

	"github.com/gin-gonic/gin"
)

type GenerationRouter struct {
	generationHandler *handler.GenerationHandler
	usageHandler      *handler.UsageHandler
}

func NewGenerationRouter(
	generationHandler *handler.GenerationHandler,
	usageHandler *handler.UsageHandler,
) *GenerationRouter {
	return &GenerationRouter{
		generationHandler: generationHandler,
		usageHandler:      usageHandler,
	}
}

func (generationRouter *GenerationRouter) RegisterRoutes(engine *gin.Engine) {
	engine.POST("/generate", generationRouter.generationHandler.Generate)
	engine.GET("/usage/:user_id", generationRouter.usageHandler.GetUsage)
}
