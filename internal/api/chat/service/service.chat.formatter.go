package chatsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	aimodels "wa_agent/internal/api/ai/models"
	chatmodels "wa_agent/internal/api/chat/models"
	webhookdto "wa_agent/internal/api/webhook/dto"
	"wa_agent/internal/logger"
)

// outgoingStore lưu tin nhắn agent gửi đi
type outgoingStore interface {
	StoreOutgoingMessage(ctx context.Context, conversationID primitive.ObjectID, body string, tokens int, cost int64) (*chatmodels.Message, error)
}

// conversationToucher cập nhật mốc hoạt động của hội thoại
type conversationToucher interface {
	TouchLastMessage(ctx context.Context, conversationID primitive.ObjectID) error
}

// ResponseFormatter chuyển AiResponse thành reply gửi qua bridge và lưu
// tin nhắn đi. Khi AI không sinh được phản hồi vẫn trả về payload hợp lệ
// với câu xin lỗi cấu hình sẵn, bridge vẫn nhận ack 200.
type ResponseFormatter struct {
	messages      outgoingStore
	conversations conversationToucher
	fallbackReply string
}

// NewResponseFormatter tạo mới ResponseFormatter
func NewResponseFormatter(messages outgoingStore, conversations conversationToucher, fallbackReply string) *ResponseFormatter {
	return &ResponseFormatter{
		messages:      messages,
		conversations: conversations,
		fallbackReply: fallbackReply,
	}
}

// FormatAndStoreResponse trả về reply text và lưu đúng một tin nhắn đi cho mỗi
// phản hồi AI thành công, kèm metadata token/cost. aiResponse nil → fallback,
// không lưu gì cả.
func (f *ResponseFormatter) FormatAndStoreResponse(ctx context.Context, conversationID primitive.ObjectID, aiResponse *aimodels.AiResponse) (string, bool) {
	if aiResponse == nil || aiResponse.Content == "" {
		return f.fallbackReply, false
	}

	if _, err := f.messages.StoreOutgoingMessage(ctx, conversationID, aiResponse.Content, aiResponse.Tokens, aiResponse.Cost); err != nil {
		// Reply vẫn được relay; mất metadata là lỗi ghi nhận, không phải lỗi giao tin
		logger.GetLogger("error").WithField("conversationId", conversationID.Hex()).
			Errorf("💬 [CHAT] Failed to store outgoing message: %v", err)
	}
	if err := f.conversations.TouchLastMessage(ctx, conversationID); err != nil {
		logger.GetLogger("error").WithField("conversationId", conversationID.Hex()).
			Errorf("💬 [CHAT] Failed to touch conversation: %v", err)
	}

	return aiResponse.Content, true
}

// FormatWebhookResponse tạo JSON ack theo đúng hợp đồng với bridge
func FormatWebhookResponse(result *ProcessResult, err error) webhookdto.IncomingMessageResponse {
	if err != nil {
		return webhookdto.IncomingMessageResponse{
			Success:   false,
			Processed: false,
			Error:     err.Error(),
		}
	}
	return webhookdto.IncomingMessageResponse{
		Success:   true,
		Processed: result.Processed,
		Reply:     result.Reply,
	}
}
