// Package aihdl - handler cho domain AI.
package aihdl

import (
	"github.com/gofiber/fiber/v3"

	aisvc "wa_agent/internal/api/ai/service"
	basehdl "wa_agent/internal/api/base/handler"
	"wa_agent/internal/global"
)

// AiHandler xử lý các route cho AI provider
type AiHandler struct {
	provider *aisvc.OpenAiProvider
}

// NewAiHandler tạo mới AiHandler
func NewAiHandler() (*AiHandler, error) {
	return &AiHandler{
		provider: aisvc.NewOpenAiProvider(global.ServerConfig),
	}, nil
}

// HandleListModels trả về danh sách model provider đang phục vụ
func (h *AiHandler) HandleListModels(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		models, err := h.provider.GetAvailableModels(c.Context())
		basehdl.HandleResponse(c, models, err)
		return nil
	})
}
