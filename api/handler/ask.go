package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/techdoc-assistant/api/middleware"
	"github.com/fyerfyer/techdoc-assistant/api/model"
	"github.com/fyerfyer/techdoc-assistant/internal/services"
)

// Answerer 问答服务接口
type Answerer interface {
	Answer(ctx context.Context, question string) (string, []string, error)
}

// AskHandler 问答请求处理器
type AskHandler struct {
	qaService Answerer
}

// NewAskHandler 创建问答处理器
func NewAskHandler(qaService Answerer) *AskHandler {
	return &AskHandler{
		qaService: qaService,
	}
}

// Ask 处理问答请求
// POST /api/ask
func (h *AskHandler) Ask(c *gin.Context) {
	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("invalid request body", err.Error()))
		return
	}

	answer, sources, err := h.qaService.Answer(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuestion) {
			middleware.HandleError(c, middleware.NewValidationError("question cannot be empty"))
			return
		}
		middleware.HandleError(c, middleware.NewInternalError("failed to answer question", err.Error()))
		return
	}

	if sources == nil {
		sources = []string{}
	}

	c.JSON(http.StatusOK, model.AskResponse{
		Answer:  answer,
		Sources: sources,
	})
}
