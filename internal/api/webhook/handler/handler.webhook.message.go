// Package webhookhdl - handler nhận webhook từ WhatsApp bridge
// (tin nhắn đến, trạng thái phiên, quét QR).
package webhookhdl

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	accountmodels "wa_agent/internal/api/account/models"
	accountsvc "wa_agent/internal/api/account/service"
	aisvc "wa_agent/internal/api/ai/service"
	basehdl "wa_agent/internal/api/base/handler"
	billingsvc "wa_agent/internal/api/billing/service"
	chatsvc "wa_agent/internal/api/chat/service"
	webhookdto "wa_agent/internal/api/webhook/dto"
	webhookmodels "wa_agent/internal/api/webhook/models"
	webhooksvc "wa_agent/internal/api/webhook/service"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
	"wa_agent/internal/logger"
	"wa_agent/internal/notification"
	"wa_agent/internal/utility"
)

// WhatsAppWebhookHandler xử lý các webhook từ WhatsApp bridge
type WhatsAppWebhookHandler struct {
	accountService    *accountsvc.AccountService
	webhookLogService *webhooksvc.WebhookLogService
	orchestrator      *chatsvc.MessageOrchestrator
}

// NewWhatsAppWebhookHandler tạo mới WhatsAppWebhookHandler và nối toàn bộ
// pipeline xử lý tin nhắn (context → AI → billing → formatter)
func NewWhatsAppWebhookHandler() (*WhatsAppWebhookHandler, error) {
	cfg := global.ServerConfig

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
	usageLogService, err := billingsvc.NewUsageLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create usage log service: %v", err)
	}
	webhookLogService, err := webhooksvc.NewWebhookLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook log service: %v", err)
	}

	alerter := notification.NewEmailAlerter(cfg)
	enforcer := billingsvc.NewBillingEnforcer(
		subscriptionService, walletService, usageLogService, alerter,
		cfg.AI_MinMessageCost, cfg.LowQuotaThresholdPct,
	)
	provider := aisvc.NewOpenAiProvider(cfg)
	formatter := chatsvc.NewResponseFormatter(messageService, conversationService, cfg.FallbackReply)
	orchestrator := chatsvc.NewMessageOrchestrator(
		accountService, conversationService, messageService, subscriptionService,
		provider, enforcer, formatter, cfg,
	)

	return &WhatsAppWebhookHandler{
		accountService:    accountService,
		webhookLogService: webhookLogService,
		orchestrator:      orchestrator,
	}, nil
}

// HandleIncomingMessage xử lý webhook tin nhắn đến.
// Response theo hợp đồng với bridge: {success, processed, reply?, error?},
// 200 khi xử lý xong, 500 kèm body có cấu trúc khi lỗi.
func (h *WhatsAppWebhookHandler) HandleIncomingMessage(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		log := logger.GetAppLogger()
		ctx := c.Context()
		rawBody := string(c.Body())

		var req webhookdto.IncomingMessageRequest
		parseErr := c.Bind().Body(&req)

		// Log webhook trước khi xử lý: payload lỗi cũng phải có vết
		webhookLog := h.saveWebhookLog(ctx, "incoming-message", req.Event, req.SessionID, req, rawBody, parseErr)

		if parseErr != nil {
			log.WithError(parseErr).Warn("🔔 [WEBHOOK] Payload tin nhắn không parse được")
			return basehdl.JSONResponse(c, common.StatusInternalServerError, webhookdto.IncomingMessageResponse{
				Success: false,
				Error:   "invalid payload",
			})
		}

		// Thiếu session_id/message.id/message.from thì từ chối trước khi orchestrate:
		// externalId rỗng sẽ phá dedup (mọi tin rỗng id sau đó bị coi là redelivery)
		if validateErr := global.Validate.Struct(&req); validateErr != nil {
			log.WithError(validateErr).WithField("session_id", req.SessionID).Warn("🔔 [WEBHOOK] Payload tin nhắn thiếu trường bắt buộc")
			if webhookLog != nil {
				_ = h.webhookLogService.UpdateProcessedStatus(ctx, webhookLog.ID, false, validateErr.Error())
			}
			return basehdl.JSONResponse(c, common.StatusBadRequest, webhookdto.IncomingMessageResponse{
				Success: false,
				Error:   "missing required fields",
			})
		}

		result, err := h.orchestrator.ProcessIncomingMessage(ctx, &chatsvc.InboundMessage{
			SessionID:   req.SessionID,
			SessionName: req.SessionName,
			ExternalID:  req.Message.ID,
			From:        req.Message.From,
			Body:        req.Message.Body,
			Type:        req.Message.Type,
			Timestamp:   req.Message.Timestamp,
			IsGroup:     req.Message.IsGroup,
			ContactName: resolveContactName(&req.Message),
		})

		if webhookLog != nil {
			errorMsg := ""
			if err != nil {
				errorMsg = err.Error()
			}
			_ = h.webhookLogService.UpdateProcessedStatus(ctx, webhookLog.ID, err == nil, errorMsg)
		}

		payload := chatsvc.FormatWebhookResponse(result, err)
		status := common.StatusOK
		if err != nil {
			log.WithError(err).WithField("session_id", req.SessionID).Error("🔔 [WEBHOOK] Xử lý tin nhắn thất bại")
			status = common.StatusInternalServerError
		}
		return basehdl.JSONResponse(c, status, payload)
	})
}

// HandleSessionStatus xử lý webhook cập nhật trạng thái phiên.
// Idempotent: last-write-wins trên connection status.
func (h *WhatsAppWebhookHandler) HandleSessionStatus(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		ctx := c.Context()
		rawBody := string(c.Body())

		var req webhookdto.SessionStatusRequest
		parseErr := c.Bind().Body(&req)
		h.saveWebhookLog(ctx, "session-status", "", req.SessionID, req, rawBody, parseErr)

		if parseErr != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "Payload không hợp lệ", common.StatusBadRequest, parseErr))
			return nil
		}
		if err := global.Validate.Struct(&req); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "Thiếu trường bắt buộc", common.StatusBadRequest, err))
			return nil
		}

		account, err := h.accountService.UpdateConnectionStatus(
			ctx, req.SessionID, accountmodels.ConnectionStatus(req.Status), req.PhoneNumber)
		basehdl.HandleResponse(c, account, err)
		return nil
	})
}

// HandleQRScan xử lý webhook khi user quét QR tạo phiên WhatsApp mới:
// tạo/cập nhật account theo (userId, sessionName) với trạng thái pending_setup
func (h *WhatsAppWebhookHandler) HandleQRScan(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		ctx := c.Context()
		rawBody := string(c.Body())

		var req webhookdto.QRScanRequest
		parseErr := c.Bind().Body(&req)
		h.saveWebhookLog(ctx, "qr-scan", "", req.SessionID, req, rawBody, parseErr)

		if parseErr != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "Payload không hợp lệ", common.StatusBadRequest, parseErr))
			return nil
		}
		if err := global.Validate.Struct(&req); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "Thiếu trường bắt buộc", common.StatusBadRequest, err))
			return nil
		}

		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "user_id không hợp lệ", common.StatusBadRequest, err))
			return nil
		}

		account, err := h.accountService.UpsertFromQRScan(ctx, userID, req.SessionID, req.SessionName)
		basehdl.HandleResponse(c, account, err)
		return nil
	})
}

// saveWebhookLog ghi nhận webhook; thất bại chỉ log, không chặn xử lý
func (h *WhatsAppWebhookHandler) saveWebhookLog(ctx context.Context, source, event, sessionID string, payload interface{}, rawBody string, parseErr error) *webhookmodels.WebhookLog {
	entry := webhookmodels.WebhookLog{
		Source:    source,
		Event:     event,
		SessionID: sessionID,
	}
	if parseErr != nil {
		entry.RawBody = rawBody
		entry.ProcessError = parseErr.Error()
	} else if payloadMap, err := utility.ToMap(payload); err == nil {
		entry.Payload = payloadMap
	} else {
		entry.RawBody = rawBody
	}

	saved, err := h.webhookLogService.CreateWebhookLog(ctx, entry)
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("🔔 [WEBHOOK] Không thể lưu webhook log")
		return nil
	}
	return saved
}

// resolveContactName ưu tiên contactName, fallback pushName từ WhatsApp profile
func resolveContactName(m *webhookdto.InboundMessage) string {
	if m.ContactName != "" {
		return m.ContactName
	}
	return m.PushName
}
