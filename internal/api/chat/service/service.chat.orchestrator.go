package chatsvc

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wa_agent/config"
	accountmodels "wa_agent/internal/api/account/models"
	aimodels "wa_agent/internal/api/ai/models"
	aisvc "wa_agent/internal/api/ai/service"
	billingmodels "wa_agent/internal/api/billing/models"
	billingsvc "wa_agent/internal/api/billing/service"
	chatmodels "wa_agent/internal/api/chat/models"
	"wa_agent/internal/api/events"
	"wa_agent/internal/common"
	"wa_agent/internal/logger"
	"wa_agent/internal/utility"
)

// ProcessingState là trạng thái của pipeline xử lý một tin nhắn đến
type ProcessingState string

const (
	StateReceived     ProcessingState = "received"
	StateContextBuilt ProcessingState = "context_built"
	StateRequestBuilt ProcessingState = "request_built"
	StateAiInvoked    ProcessingState = "ai_invoked"
	StateBilled       ProcessingState = "billed"
	StateFormatted    ProcessingState = "formatted"
	StateCompleted    ProcessingState = "completed"
	StateFailed       ProcessingState = "failed"
)

// Các loại message bridge gửi lên được coi là text: web bridge gửi "chat",
// API bridge gửi "text", type rỗng coi như text
var textMessageTypes = map[string]bool{
	"":     true,
	"chat": true,
	"text": true,
}

// InboundMessage là tin nhắn đến đã tách khỏi payload webhook
type InboundMessage struct {
	SessionID   string
	SessionName string
	ExternalID  string // ID tin nhắn từ bridge, dùng để dedup
	From        string // JID người gửi (vd: 84901234567@c.us)
	Body        string
	Type        string
	Timestamp   int64
	IsGroup     bool
	ContactName string
}

// ProcessResult là kết quả pipeline trả về cho webhook handler
type ProcessResult struct {
	Processed     bool            // Pipeline có sinh phản hồi cho tin này không
	Reply         string          // Nội dung relay về bridge (rỗng = không trả lời)
	WasSuccessful bool            // AI có thực sự sinh được phản hồi không (độc lập với billing)
	State         ProcessingState // Trạng thái cuối của pipeline
}

// Các collaborator của orchestrator, inject qua constructor để test với fakes
type accountFinder interface {
	FindBySessionID(ctx context.Context, sessionID string) (*accountmodels.Account, error)
}

type conversationStore interface {
	FindOrCreateConversation(ctx context.Context, sessionID, contactPhone, contactName string, isGroup bool) (*chatmodels.Conversation, error)
}

type messageStore interface {
	StoreIncomingMessage(ctx context.Context, conversationID primitive.ObjectID, externalID, body string, timestamp int64) (*chatmodels.Message, bool, error)
	BuildConversationContext(ctx context.Context, conversationID primitive.ObjectID, excludeID primitive.ObjectID, limit int, windowHours int) ([]chatmodels.Message, error)
}

type contextLimitFinder interface {
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Subscription, error)
}

type aiProvider interface {
	CanGenerateResponse(account *accountmodels.Account) bool
	GenerateResponse(ctx context.Context, account *accountmodels.Account, request *aimodels.AiRequest) *aimodels.AiResponse
}

type billingCharger interface {
	ChargeForResponse(ctx context.Context, req *billingsvc.ChargeRequest) *billingsvc.BillingOutcome
}

type replyFormatter interface {
	FormatAndStoreResponse(ctx context.Context, conversationID primitive.ObjectID, aiResponse *aimodels.AiResponse) (string, bool)
}

// MessageOrchestrator chạy pipeline xử lý tin nhắn đến:
// Received → ContextBuilt → RequestBuilt → AiInvoked → Billed → Formatted → Completed.
// AI không phản hồi vẫn đi hết pipeline với fallback reply và không tính tiền;
// billing thất bại không chặn việc gửi reply.
type MessageOrchestrator struct {
	accounts      accountFinder
	conversations conversationStore
	messages      messageStore
	subscriptions contextLimitFinder
	provider      aiProvider
	billing       billingCharger
	formatter     replyFormatter

	contextWindowSize  int
	contextWindowHours int
	nonTextReply       string
}

// NewMessageOrchestrator tạo mới MessageOrchestrator
func NewMessageOrchestrator(
	accounts accountFinder,
	conversations conversationStore,
	messages messageStore,
	subscriptions contextLimitFinder,
	provider aiProvider,
	billing billingCharger,
	formatter replyFormatter,
	cfg *config.Configuration,
) *MessageOrchestrator {
	return &MessageOrchestrator{
		accounts:           accounts,
		conversations:      conversations,
		messages:           messages,
		subscriptions:      subscriptions,
		provider:           provider,
		billing:            billing,
		formatter:          formatter,
		contextWindowSize:  cfg.ContextWindowSize,
		contextWindowHours: cfg.ContextWindowHours,
		nonTextReply:       cfg.NonTextReply,
	}
}

// ProcessIncomingMessage xử lý một tin nhắn đến và trả về kết quả cho webhook handler.
// Error chỉ trả về cho lỗi fatal (account/hạ tầng); mọi trường hợp khác
// đều ra ProcessResult hợp lệ để bridge luôn nhận được ack có cấu trúc.
func (o *MessageOrchestrator) ProcessIncomingMessage(ctx context.Context, in *InboundMessage) (*ProcessResult, error) {
	log := logger.GetAppLogger().WithFields(logrus.Fields{
		"session_id": in.SessionID,
		"message_id": in.ExternalID,
	})
	state := StateReceived

	// Received: account phải tồn tại, agent phải đang bật
	account, err := o.accounts.FindBySessionID(ctx, in.SessionID)
	if err != nil {
		log.WithError(err).WithField("state", StateFailed).Error("📨 [ORCHESTRATOR] Không tìm thấy account cho phiên")
		return nil, err
	}
	if account.Disabled || !account.AgentEnabled {
		log.Debug("📨 [ORCHESTRATOR] Agent đang tắt, bỏ qua tin nhắn")
		return &ProcessResult{Processed: false, State: StateCompleted}, nil
	}

	// Tin không phải text: trả lời canned apology, không lưu tin, không gọi AI,
	// không tính tiền
	if !textMessageTypes[in.Type] {
		rejection := common.NewNonTextMessageError(in.Type)
		log.WithField("message_type", in.Type).Info("📨 [ORCHESTRATOR] " + rejection.Error())
		result := &ProcessResult{
			Processed:     true,
			Reply:         o.nonTextReply,
			WasSuccessful: false,
			State:         StateCompleted,
		}
		o.emitProcessed(ctx, in, "", nil, nil, "non_text_message")
		return result, nil
	}

	// Chính sách từ khóa của account: ignore words chặn, trigger words lọc
	if !shouldRespond(account, in.Body) {
		log.Debug("📨 [ORCHESTRATOR] Tin nhắn không khớp chính sách từ khóa, bỏ qua")
		return &ProcessResult{Processed: false, State: StateCompleted}, nil
	}

	// ContextBuilt. Cờ isGroup của bridge có thể thiếu, suy thêm từ JID
	isGroup := in.IsGroup || utility.IsGroupJID(in.From)
	conversation, err := o.conversations.FindOrCreateConversation(ctx, in.SessionID, utility.NormalizePhoneFromJID(in.From), in.ContactName, isGroup)
	if err != nil {
		log.WithError(err).WithField("state", StateFailed).Error("📨 [ORCHESTRATOR] Không tạo được conversation")
		return nil, err
	}
	stored, created, err := o.messages.StoreIncomingMessage(ctx, conversation.ID, in.ExternalID, in.Body, in.Timestamp)
	if err != nil {
		log.WithError(err).WithField("state", StateFailed).Error("📨 [ORCHESTRATOR] Không lưu được tin nhắn đến")
		return nil, err
	}
	if !created {
		// Bridge gửi lại webhook cho tin đã xử lý: không chạy lại AI/billing
		log.Info("📨 [ORCHESTRATOR] Tin nhắn đã xử lý trước đó, bỏ qua redelivery")
		return &ProcessResult{Processed: false, State: StateCompleted}, nil
	}

	history, err := o.messages.BuildConversationContext(ctx, conversation.ID, stored.ID, o.resolveContextLimit(ctx, account), o.contextWindowHours)
	if err != nil {
		// Thiếu lịch sử vẫn trả lời được, chỉ mất ngữ cảnh
		log.WithError(err).Warn("📨 [ORCHESTRATOR] Không lấy được lịch sử hội thoại")
		history = nil
	}
	state = StateContextBuilt

	request := aisvc.BuildAiRequest(account, history, in.Body)
	state = StateRequestBuilt

	// Provider nuốt mọi lỗi, nil nghĩa là không có phản hồi
	var aiResponse *aimodels.AiResponse
	if o.provider.CanGenerateResponse(account) {
		aiResponse = o.provider.GenerateResponse(ctx, account, request)
	}
	state = StateAiInvoked

	// Chỉ tính tiền khi AI thực sự sinh được phản hồi
	var outcome *billingsvc.BillingOutcome
	if aiResponse != nil {
		outcome = o.billing.ChargeForResponse(ctx, &billingsvc.ChargeRequest{
			UserID:         account.UserID,
			SessionID:      in.SessionID,
			ConversationID: conversation.ID,
			Model:          aiResponse.Model,
			Tokens:         int64(aiResponse.Tokens),
			Cost:           aiResponse.Cost,
			CorrelationID:  aiResponse.CorrelationID,
		})
	}
	state = StateBilled

	// Billing thất bại vẫn gửi reply; AI nil → fallback
	reply, wasSuccessful := o.formatter.FormatAndStoreResponse(ctx, conversation.ID, aiResponse)
	state = StateFormatted

	failReason := ""
	if !wasSuccessful {
		failReason = "ai_no_response"
	}
	o.emitProcessed(ctx, in, conversation.ID.Hex(), aiResponse, outcome, failReason)

	log.WithField("state", state).Debug("📨 [ORCHESTRATOR] Pipeline hoàn tất")
	return &ProcessResult{
		Processed:     true,
		Reply:         reply,
		WasSuccessful: wasSuccessful,
		State:         StateCompleted,
	}, nil
}

// resolveContextLimit giới hạn cửa sổ ngữ cảnh theo contextLimit của subscription
// đang hoạt động (nếu có và nhỏ hơn mặc định)
func (o *MessageOrchestrator) resolveContextLimit(ctx context.Context, account *accountmodels.Account) int {
	limit := o.contextWindowSize
	sub, err := o.subscriptions.FindActiveByUser(ctx, account.UserID)
	if err != nil || sub == nil {
		return limit
	}
	if sub.ContextLimit > 0 && sub.ContextLimit < limit {
		return sub.ContextLimit
	}
	return limit
}

// emitProcessed phát domain event sau khi pipeline hoàn tất: best-effort,
// handler chạy trong goroutine riêng
func (o *MessageOrchestrator) emitProcessed(ctx context.Context, in *InboundMessage, conversationID string, aiResponse *aimodels.AiResponse, outcome *billingsvc.BillingOutcome, failReason string) {
	event := events.MessageProcessedEvent{
		SessionID:      in.SessionID,
		ConversationID: conversationID,
		Status:         "completed",
		BillingMode:    billingmodels.BillingModeNone,
		QuotaRemaining: -1,
		QuotaLimit:     -1,
		FailReason:     failReason,
	}
	if aiResponse != nil {
		event.CorrelationID = aiResponse.CorrelationID
		event.TokensUsed = int64(aiResponse.Tokens)
	}
	if outcome != nil {
		event.BillingMode = outcome.Mode
		event.Cost = outcome.Cost
		event.QuotaRemaining = outcome.QuotaRemaining
		event.QuotaLimit = outcome.QuotaLimit
	}
	events.EmitMessageProcessed(ctx, event)
}

// shouldRespond áp chính sách từ khóa: ignore words có độ ưu tiên cao hơn,
// trigger words rỗng nghĩa là trả lời mọi tin
func shouldRespond(account *accountmodels.Account, body string) bool {
	lowered := strings.ToLower(body)
	for _, word := range account.IgnoreWords {
		if word != "" && strings.Contains(lowered, strings.ToLower(word)) {
			return false
		}
	}
	if len(account.TriggerWords) == 0 {
		return true
	}
	for _, word := range account.TriggerWords {
		if word != "" && strings.Contains(lowered, strings.ToLower(word)) {
			return true
		}
	}
	return false
}
