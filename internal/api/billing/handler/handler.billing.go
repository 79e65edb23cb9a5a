// Package billinghdl - handler cho domain Billing (gói cước, subscription, ví).
package billinghdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "wa_agent/internal/api/base/handler"
	billingdto "wa_agent/internal/api/billing/dto"
	billingsvc "wa_agent/internal/api/billing/service"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// BillingHandler xử lý các route cho gói cước, subscription và ví
type BillingHandler struct {
	packageService      *billingsvc.PackageService
	subscriptionService *billingsvc.SubscriptionService
	walletService       *billingsvc.WalletService
}

// NewBillingHandler tạo mới BillingHandler
func NewBillingHandler() (*BillingHandler, error) {
	packageService, err := billingsvc.NewPackageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create package service: %v", err)
	}
	subscriptionService, err := billingsvc.NewSubscriptionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription service: %v", err)
	}
	walletService, err := billingsvc.NewWalletService()
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet service: %v", err)
	}

	return &BillingHandler{
		packageService:      packageService,
		subscriptionService: subscriptionService,
		walletService:       walletService,
	}, nil
}

// HandleListPackages liệt kê các gói cước đang bán
func (h *BillingHandler) HandleListPackages(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		packages, err := h.packageService.FindActivePackages(c.Context())
		basehdl.HandleResponse(c, packages, err)
		return nil
	})
}

// HandleGrantSubscription cấp subscription cho user từ một gói cước.
// Gói phải tồn tại và đang bán; subscription active cũ của user bị hủy
// để giữ đúng một active per user.
func (h *BillingHandler) HandleGrantSubscription(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input billingdto.SubscriptionGrantInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "Dữ liệu gửi lên không đúng định dạng JSON", common.StatusBadRequest, err))
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "Dữ liệu không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		userID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "userId không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		packageID, err := primitive.ObjectIDFromHex(input.PackageID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "packageId không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		pkg, err := h.packageService.FindOneById(c.Context(), packageID)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		if !pkg.IsActive {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeBusinessState, "Gói cước đã ngừng bán", common.StatusBadRequest, nil))
			return nil
		}

		subscription, err := h.subscriptionService.CreateFromPackage(c.Context(), userID, &pkg)
		basehdl.HandleResponse(c, subscription, err)
		return nil
	})
}

// HandleWalletTopup nạp tiền vào ví của user, tạo ví nếu chưa có
func (h *BillingHandler) HandleWalletTopup(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input billingdto.WalletTopupInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "Dữ liệu gửi lên không đúng định dạng JSON", common.StatusBadRequest, err))
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "Dữ liệu không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		userID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "userId không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		wallet, err := h.walletService.Credit(c.Context(), userID, input.Amount)
		basehdl.HandleResponse(c, wallet, err)
		return nil
	})
}
