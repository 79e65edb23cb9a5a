// Package router đăng ký các route thuộc domain Webhook: các endpoint public
// nhận webhook từ WhatsApp bridge. Path cố định theo hợp đồng với bridge,
// không nằm trong prefix /api/v1.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	apirouter "wa_agent/internal/api/router"
	webhookhdl "wa_agent/internal/api/webhook/handler"
)

// Register đăng ký tất cả route webhook.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := webhookhdl.NewWhatsAppWebhookHandler()
	if err != nil {
		return fmt.Errorf("create whatsapp webhook handler: %w", err)
	}

	app := r.App()
	app.Post("/webhook/incoming-message", handler.HandleIncomingMessage)
	app.Post("/webhook/session", handler.HandleSessionStatus)
	app.Post("/api/whatsapp/webhook", handler.HandleQRScan)

	return nil
}
