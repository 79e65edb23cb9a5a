// Package router đăng ký các route thuộc domain Billing.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	billinghdl "wa_agent/internal/api/billing/handler"
	apirouter "wa_agent/internal/api/router"
)

// Register đăng ký tất cả route billing lên v1.
func Register(v1 fiber.Router, _ *apirouter.Router) error {
	handler, err := billinghdl.NewBillingHandler()
	if err != nil {
		return fmt.Errorf("create billing handler: %w", err)
	}

	v1.Get("/billing/packages", handler.HandleListPackages)
	v1.Post("/billing/subscriptions", handler.HandleGrantSubscription)
	v1.Post("/billing/wallet/topup", handler.HandleWalletTopup)

	return nil
}
