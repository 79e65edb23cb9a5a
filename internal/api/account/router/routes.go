// Package router đăng ký các route thuộc domain Account.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	accounthdl "wa_agent/internal/api/account/handler"
	apirouter "wa_agent/internal/api/router"
)

// Register đăng ký tất cả route account lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := accounthdl.NewAccountHandler()
	if err != nil {
		return fmt.Errorf("create account handler: %w", err)
	}

	v1.Get("/accounts/can-activate", handler.HandleCanActivate)
	v1.Get("/accounts/:sessionId", handler.HandleGetAccount)
	v1.Put("/accounts/:sessionId/agent", handler.HandleUpdateAgentConfig)
	v1.Get("/accounts/:sessionId/conversations", handler.HandleListConversations)
	v1.Get("/accounts/:sessionId/conversations/:conversationId/messages", handler.HandleListMessages)

	return nil
}
