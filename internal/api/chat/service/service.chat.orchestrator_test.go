package chatsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wa_agent/config"
	accountmodels "wa_agent/internal/api/account/models"
	aimodels "wa_agent/internal/api/ai/models"
	billingmodels "wa_agent/internal/api/billing/models"
	billingsvc "wa_agent/internal/api/billing/service"
	chatmodels "wa_agent/internal/api/chat/models"
	"wa_agent/internal/common"
)

// ==================== FAKES ====================

type fakeAccountFinder struct {
	account *accountmodels.Account
	err     error
}

func (f *fakeAccountFinder) FindBySessionID(ctx context.Context, sessionID string) (*accountmodels.Account, error) {
	return f.account, f.err
}

type fakeConversationStore struct {
	conversation *chatmodels.Conversation
	calls        int
	lastIsGroup  bool
}

func (f *fakeConversationStore) FindOrCreateConversation(ctx context.Context, sessionID, contactPhone, contactName string, isGroup bool) (*chatmodels.Conversation, error) {
	f.calls++
	f.lastIsGroup = isGroup
	return f.conversation, nil
}

type fakeMessageStore struct {
	stored       *chatmodels.Message
	created      bool
	history      []chatmodels.Message
	storeCalls   int
	contextCalls int
	contextLimit int
}

func (f *fakeMessageStore) StoreIncomingMessage(ctx context.Context, conversationID primitive.ObjectID, externalID, body string, timestamp int64) (*chatmodels.Message, bool, error) {
	f.storeCalls++
	return f.stored, f.created, nil
}

func (f *fakeMessageStore) BuildConversationContext(ctx context.Context, conversationID primitive.ObjectID, excludeID primitive.ObjectID, limit int, windowHours int) ([]chatmodels.Message, error) {
	f.contextCalls++
	f.contextLimit = limit
	return f.history, nil
}

type fakeSubFinder struct {
	sub *billingmodels.Subscription
}

func (f *fakeSubFinder) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Subscription, error) {
	return f.sub, nil
}

type fakeAiProvider struct {
	canGenerate bool
	response    *aimodels.AiResponse
	calls       int
}

func (f *fakeAiProvider) CanGenerateResponse(account *accountmodels.Account) bool {
	return f.canGenerate
}

func (f *fakeAiProvider) GenerateResponse(ctx context.Context, account *accountmodels.Account, request *aimodels.AiRequest) *aimodels.AiResponse {
	f.calls++
	return f.response
}

type fakeBillingCharger struct {
	outcome *billingsvc.BillingOutcome
	calls   int
	lastReq *billingsvc.ChargeRequest
}

func (f *fakeBillingCharger) ChargeForResponse(ctx context.Context, req *billingsvc.ChargeRequest) *billingsvc.BillingOutcome {
	f.calls++
	f.lastReq = req
	return f.outcome
}

type fakeReplyFormatter struct {
	fallback string
	calls    int
}

func (f *fakeReplyFormatter) FormatAndStoreResponse(ctx context.Context, conversationID primitive.ObjectID, aiResponse *aimodels.AiResponse) (string, bool) {
	f.calls++
	if aiResponse == nil {
		return f.fallback, false
	}
	return aiResponse.Content, true
}

// ==================== HELPERS ====================

func testConfig() *config.Configuration {
	return &config.Configuration{
		ContextWindowSize:  20,
		ContextWindowHours: 24,
		NonTextReply:       "Xin lỗi, hiện tại tôi chỉ có thể trả lời tin nhắn văn bản.",
	}
}

func enabledAccount() *accountmodels.Account {
	return &accountmodels.Account{
		ID:           primitive.NewObjectID(),
		UserID:       primitive.NewObjectID(),
		SessionID:    "session-1",
		AgentEnabled: true,
		AgentModel:   "gpt-4o-mini",
	}
}

type fixtures struct {
	accounts      *fakeAccountFinder
	conversations *fakeConversationStore
	messages      *fakeMessageStore
	subs          *fakeSubFinder
	provider      *fakeAiProvider
	billing       *fakeBillingCharger
	formatter     *fakeReplyFormatter
}

func newOrchestratorWithFakes(account *accountmodels.Account) (*MessageOrchestrator, *fixtures) {
	f := &fixtures{
		accounts:      &fakeAccountFinder{account: account},
		conversations: &fakeConversationStore{conversation: &chatmodels.Conversation{ID: primitive.NewObjectID()}},
		messages: &fakeMessageStore{
			stored:  &chatmodels.Message{ID: primitive.NewObjectID()},
			created: true,
		},
		subs:      &fakeSubFinder{},
		provider:  &fakeAiProvider{canGenerate: true},
		billing:   &fakeBillingCharger{outcome: &billingsvc.BillingOutcome{State: billingsvc.BillingDebited, Mode: billingmodels.BillingModeSubscription}},
		formatter: &fakeReplyFormatter{fallback: "Xin lỗi, hệ thống đang bận."},
	}
	orchestrator := NewMessageOrchestrator(f.accounts, f.conversations, f.messages, f.subs, f.provider, f.billing, f.formatter, testConfig())
	return orchestrator, f
}

func textMessage() *InboundMessage {
	return &InboundMessage{
		SessionID:  "session-1",
		ExternalID: "msg-001",
		From:       "84901234567@c.us",
		Body:       "Shop còn hàng không?",
		Type:       "chat",
		Timestamp:  1700000000,
	}
}

// ==================== TESTS ====================

func TestProcessIncomingMessage_HappyPath(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())
	f.provider.response = &aimodels.AiResponse{
		Content:       "Dạ shop còn hàng ạ!",
		Tokens:        120,
		Cost:          2,
		Model:         "gpt-4o-mini",
		CorrelationID: "corr-1",
	}

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), textMessage())
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.True(t, result.WasSuccessful)
	assert.Equal(t, "Dạ shop còn hàng ạ!", result.Reply)
	assert.Equal(t, StateCompleted, result.State)

	// AI, billing và formatter đều được gọi đúng một lần
	assert.Equal(t, 1, f.provider.calls)
	assert.Equal(t, 1, f.billing.calls)
	assert.Equal(t, 1, f.formatter.calls)
	require.NotNil(t, f.billing.lastReq)
	assert.Equal(t, int64(120), f.billing.lastReq.Tokens)
	assert.Equal(t, "corr-1", f.billing.lastReq.CorrelationID)
}

func TestProcessIncomingMessage_TinKhongPhaiText(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())

	in := textMessage()
	in.Type = "image"

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.False(t, result.WasSuccessful)
	assert.Equal(t, testConfig().NonTextReply, result.Reply)

	// Không đụng hội thoại, không gọi AI, không tính tiền
	assert.Equal(t, 0, f.conversations.calls)
	assert.Equal(t, 0, f.messages.storeCalls)
	assert.Equal(t, 0, f.provider.calls)
	assert.Equal(t, 0, f.billing.calls)
}

func TestProcessIncomingMessage_TypeTextCungLaText(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())
	f.provider.response = &aimodels.AiResponse{
		Content:       "Bonjour! Tôi giúp gì được cho bạn?",
		Tokens:        40,
		Model:         "gpt-4o-mini",
		CorrelationID: "corr-text",
	}

	// Một số bridge gửi type "text" thay vì "chat", vẫn phải đi hết pipeline
	in := textMessage()
	in.Type = "text"

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.True(t, result.WasSuccessful)
	assert.NotEmpty(t, result.Reply)
	assert.NotEqual(t, testConfig().NonTextReply, result.Reply)
	assert.Equal(t, 1, f.conversations.calls)
	assert.Equal(t, 1, f.messages.storeCalls)
	assert.Equal(t, 1, f.provider.calls)
	assert.Equal(t, 1, f.billing.calls)
}

func TestProcessIncomingMessage_GroupSuyTuJID(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())

	// Bridge quên set isGroup nhưng JID là group chat
	in := textMessage()
	in.From = "120363041234567890@g.us"
	in.IsGroup = false

	_, err := orchestrator.ProcessIncomingMessage(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, f.conversations.lastIsGroup)
}

func TestProcessIncomingMessage_RedeliveryKhongXuLyLai(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())
	f.messages.created = false // tin đã tồn tại từ webhook trước

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), textMessage())
	require.NoError(t, err)

	assert.False(t, result.Processed)
	assert.Empty(t, result.Reply)
	assert.Equal(t, 0, f.provider.calls)
	assert.Equal(t, 0, f.billing.calls)
}

func TestProcessIncomingMessage_AiKhongPhanHoiVanCoFallback(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())
	f.provider.response = nil // provider timeout/lỗi → nil

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), textMessage())
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.False(t, result.WasSuccessful)
	assert.Equal(t, f.formatter.fallback, result.Reply)

	// Không phản hồi thì không tính tiền
	assert.Equal(t, 0, f.billing.calls)
}

func TestProcessIncomingMessage_BillingThatBaiVanGuiReply(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())
	f.provider.response = &aimodels.AiResponse{
		Content:       "Dạ em kiểm tra giúp mình nhé",
		Tokens:        80,
		CorrelationID: "corr-2",
	}
	f.billing.outcome = &billingsvc.BillingOutcome{
		State:          billingsvc.BillingInsufficientFunds,
		Mode:           billingmodels.BillingModeNone,
		QuotaRemaining: -1,
		QuotaLimit:     -1,
	}

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), textMessage())
	require.NoError(t, err)

	// Hết tiền không được chặn reply
	assert.True(t, result.Processed)
	assert.True(t, result.WasSuccessful)
	assert.Equal(t, "Dạ em kiểm tra giúp mình nhé", result.Reply)
	assert.Equal(t, 1, f.billing.calls)
}

func TestProcessIncomingMessage_AgentTatThiBoQua(t *testing.T) {
	account := enabledAccount()
	account.AgentEnabled = false
	orchestrator, f := newOrchestratorWithFakes(account)

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), textMessage())
	require.NoError(t, err)

	assert.False(t, result.Processed)
	assert.Empty(t, result.Reply)
	assert.Equal(t, 0, f.provider.calls)
}

func TestProcessIncomingMessage_AccountKhongTonTai(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(nil)
	f.accounts.err = common.ErrAccountNotFound

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), textMessage())

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestProcessIncomingMessage_IgnoreWords(t *testing.T) {
	account := enabledAccount()
	account.IgnoreWords = []string{"quảng cáo"}
	orchestrator, f := newOrchestratorWithFakes(account)

	in := textMessage()
	in.Body = "Tin nhắn QUẢNG CÁO từ đối tác"

	result, err := orchestrator.ProcessIncomingMessage(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, result.Processed)
	assert.Equal(t, 0, f.provider.calls)
}

func TestProcessIncomingMessage_ContextLimitTheoSubscription(t *testing.T) {
	orchestrator, f := newOrchestratorWithFakes(enabledAccount())
	f.subs.sub = &billingmodels.Subscription{ContextLimit: 5}
	f.provider.response = &aimodels.AiResponse{Content: "ok", CorrelationID: "corr-3"}

	_, err := orchestrator.ProcessIncomingMessage(context.Background(), textMessage())
	require.NoError(t, err)

	// Cửa sổ ngữ cảnh bị chặn bởi contextLimit của gói thay vì mặc định 20
	assert.Equal(t, 5, f.messages.contextLimit)
}
