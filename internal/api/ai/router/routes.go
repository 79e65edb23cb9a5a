// Package router đăng ký các route thuộc domain AI.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	aihdl "wa_agent/internal/api/ai/handler"
	apirouter "wa_agent/internal/api/router"
)

// Register đăng ký tất cả route AI lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := aihdl.NewAiHandler()
	if err != nil {
		return fmt.Errorf("create ai handler: %w", err)
	}

	v1.Get("/ai/models", handler.HandleListModels)

	return nil
}
