// Package accounthdl - handler cho domain Account (phiên WhatsApp + cấu hình agent).
package accounthdl

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	accountdto "wa_agent/internal/api/account/dto"
	accountsvc "wa_agent/internal/api/account/service"
	basehdl "wa_agent/internal/api/base/handler"
	billingsvc "wa_agent/internal/api/billing/service"
	chatsvc "wa_agent/internal/api/chat/service"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// AccountHandler xử lý các route cho account và cấu hình agent
type AccountHandler struct {
	accountService      *accountsvc.AccountService
	conversationService *chatsvc.ConversationService
	messageService      *chatsvc.MessageService
	gate                *accountsvc.AccountGate
}

// NewAccountHandler tạo mới AccountHandler
func NewAccountHandler() (*AccountHandler, error) {
	accountService, err := accountsvc.NewAccountService()
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %v", err)
	}
	conversationService, err := chatsvc.NewConversationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation service: %v", err)
	}
	messageService, err := chatsvc.NewMessageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create message service: %v", err)
	}
	subscriptionService, err := billingsvc.NewSubscriptionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription service: %v", err)
	}
	walletService, err := billingsvc.NewWalletService()
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet service: %v", err)
	}

	gate := accountsvc.NewAccountGate(
		accountService, subscriptionService, walletService,
		global.ServerConfig.AI_MinMessageCost,
	)

	return &AccountHandler{
		accountService:      accountService,
		conversationService: conversationService,
		messageService:      messageService,
		gate:                gate,
	}, nil
}

// HandleCanActivate kiểm tra user có được phép bật thêm một AI agent không.
// Trả về đầy đủ thông tin (allowed, reason, count/limit, balance) cho cả hai
// nhánh allow/deny để UI render giống nhau.
func (h *AccountHandler) HandleCanActivate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var query accountdto.CanActivateQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "Query không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		if err := global.Validate.Struct(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "Thiếu userId", common.StatusBadRequest, err))
			return nil
		}

		userID, err := primitive.ObjectIDFromHex(query.UserID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "userId không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		result, err := h.gate.CanActivateAgent(c.Context(), userID)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleGetAccount trả về account theo sessionId
func (h *AccountHandler) HandleGetAccount(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		account, err := h.accountService.FindBySessionID(c.Context(), c.Params("sessionId"))
		basehdl.HandleResponse(c, account, err)
		return nil
	})
}

// HandleUpdateAgentConfig cập nhật cấu hình agent của một phiên.
// Khi request bật agent (agentEnabled=true), gate được chạy lại vì
// user có thể đã hết slot hoặc hết tiền từ lần kiểm tra trước.
func (h *AccountHandler) HandleUpdateAgentConfig(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		sessionID := c.Params("sessionId")

		var input accountdto.AgentConfigUpdateInput
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

		if input.AgentEnabled != nil && *input.AgentEnabled {
			account, err := h.accountService.FindBySessionID(c.Context(), sessionID)
			if err != nil {
				basehdl.HandleResponse(c, nil, err)
				return nil
			}
			activation, err := h.gate.CanActivateAgent(c.Context(), account.UserID)
			if err != nil {
				basehdl.HandleResponse(c, nil, err)
				return nil
			}
			// Agent đang bật sẵn thì chỉ là update config, không chiếm thêm slot
			if !account.AgentEnabled && !activation.Allowed {
				basehdl.HandleResponse(c, nil, common.NewError(
					common.ErrCodeBusinessState, activation.Reason, common.StatusPaymentRequired, activation))
				return nil
			}
		}

		account, err := h.accountService.UpdateAgentConfig(c.Context(), sessionID, &input)
		basehdl.HandleResponse(c, account, err)
		return nil
	})
}

// HandleListConversations liệt kê hội thoại của một phiên, phân trang
func (h *AccountHandler) HandleListConversations(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		sessionID := c.Params("sessionId")
		page := parseQueryInt64(c, "page", 1)
		limit := parseQueryInt64(c, "limit", 20)

		result, err := h.conversationService.ListBySession(c.Context(), sessionID, page, limit)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleListMessages liệt kê tin nhắn của một hội thoại, phân trang, mới nhất trước
func (h *AccountHandler) HandleListMessages(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		conversationID, err := primitive.ObjectIDFromHex(c.Params("conversationId"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "conversationId không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		page := parseQueryInt64(c, "page", 1)
		limit := parseQueryInt64(c, "limit", 50)

		messages, err := h.messageService.ListByConversation(c.Context(), conversationID, page, limit)
		basehdl.HandleResponse(c, messages, err)
		return nil
	})
}

// parseQueryInt64 đọc query param kiểu số, sai định dạng thì dùng default
func parseQueryInt64(c fiber.Ctx, key string, defaultValue int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
