package billingsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	billingmodels "wa_agent/internal/api/billing/models"
	"wa_agent/internal/common"
)

// ==================== FAKES ====================

type fakeSubConsumer struct {
	sub   *billingmodels.Subscription
	err   error
	calls int
}

func (f *fakeSubConsumer) ConsumeMessageCredit(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Subscription, error) {
	f.calls++
	return f.sub, f.err
}

type fakeWalletDebitor struct {
	err        error
	calls      int
	lastAmount int64
}

func (f *fakeWalletDebitor) Debit(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	f.calls++
	f.lastAmount = amount
	return f.err
}

type fakeUsageAppender struct {
	logs []billingmodels.AIUsageLog
}

func (f *fakeUsageAppender) Append(ctx context.Context, log billingmodels.AIUsageLog) (*billingmodels.AIUsageLog, error) {
	f.logs = append(f.logs, log)
	return &log, nil
}

// Alert chạy trong goroutine riêng nên fake dùng channel để test chờ được
type fakeAlerter struct {
	lowQuota chan struct{}
	failure  chan struct{}
}

func newFakeAlerter() *fakeAlerter {
	return &fakeAlerter{
		lowQuota: make(chan struct{}, 1),
		failure:  make(chan struct{}, 1),
	}
}

func (f *fakeAlerter) SendLowQuotaAlert(userID string, remaining, limit int64) {
	f.lowQuota <- struct{}{}
}

func (f *fakeAlerter) SendBillingFailureAlert(userID string, sessionID string, amount int64) {
	f.failure <- struct{}{}
}

func waitAlert(t *testing.T, ch chan struct{}, name string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("không nhận được alert %s", name)
	}
}

// ==================== HELPERS ====================

func chargeRequest() *ChargeRequest {
	return &ChargeRequest{
		UserID:         primitive.NewObjectID(),
		SessionID:      "session-1",
		ConversationID: primitive.NewObjectID(),
		Model:          "gpt-4o-mini",
		Tokens:         100,
		Cost:           5,
		CorrelationID:  "corr-1",
	}
}

// ==================== TESTS ====================

func TestChargeForResponse_TruSubscription(t *testing.T) {
	subs := &fakeSubConsumer{sub: &billingmodels.Subscription{MessagesLimit: 100, MessagesUsed: 50}}
	wallets := &fakeWalletDebitor{}
	usage := &fakeUsageAppender{}
	enforcer := NewBillingEnforcer(subs, wallets, usage, newFakeAlerter(), 15, 20)

	outcome := enforcer.ChargeForResponse(context.Background(), chargeRequest())

	assert.Equal(t, BillingDebited, outcome.State)
	assert.Equal(t, billingmodels.BillingModeSubscription, outcome.Mode)
	assert.Equal(t, int64(50), outcome.QuotaRemaining)
	assert.Equal(t, int64(100), outcome.QuotaLimit)
	assert.Equal(t, int64(0), outcome.Cost) // subscription trừ theo tin, không trừ credit
	assert.True(t, outcome.Charged())

	// Ví không bị đụng tới khi subscription còn hạn mức
	assert.Equal(t, 0, wallets.calls)
	assert.Len(t, usage.logs, 1)
	assert.Equal(t, billingmodels.BillingModeSubscription, usage.logs[0].BillingMode)
}

func TestChargeForResponse_HetQuotaChuyenSangVi(t *testing.T) {
	subs := &fakeSubConsumer{err: common.ErrQuotaExhausted}
	wallets := &fakeWalletDebitor{}
	usage := &fakeUsageAppender{}
	enforcer := NewBillingEnforcer(subs, wallets, usage, newFakeAlerter(), 15, 20)

	outcome := enforcer.ChargeForResponse(context.Background(), chargeRequest())

	assert.Equal(t, BillingDebited, outcome.State)
	assert.Equal(t, billingmodels.BillingModeWallet, outcome.Mode)
	// Cost request là 5 nhưng dưới mức tối thiểu 15 → trừ 15
	assert.Equal(t, int64(15), outcome.Cost)
	assert.Equal(t, int64(15), wallets.lastAmount)
	assert.Len(t, usage.logs, 1)
	assert.Equal(t, billingmodels.BillingModeWallet, usage.logs[0].BillingMode)
}

func TestChargeForResponse_ViKhongDuTien(t *testing.T) {
	subs := &fakeSubConsumer{err: common.ErrQuotaExhausted}
	wallets := &fakeWalletDebitor{err: common.ErrInsufficientFunds}
	usage := &fakeUsageAppender{}
	alerter := newFakeAlerter()
	enforcer := NewBillingEnforcer(subs, wallets, usage, alerter, 15, 20)

	outcome := enforcer.ChargeForResponse(context.Background(), chargeRequest())

	// Không bao giờ trả error: outcome mang trạng thái thất bại
	assert.Equal(t, BillingInsufficientFunds, outcome.State)
	assert.Equal(t, billingmodels.BillingModeNone, outcome.Mode)
	assert.False(t, outcome.Charged())

	// Usage vẫn được ghi với mode none để đối soát
	assert.Len(t, usage.logs, 1)
	assert.Equal(t, billingmodels.BillingModeNone, usage.logs[0].BillingMode)

	// Operator phải nhận được alert
	waitAlert(t, alerter.failure, "billing failure")
}

func TestChargeForResponse_LoiHaTangKhongChanReply(t *testing.T) {
	subs := &fakeSubConsumer{err: errors.New("mongo timeout")}
	wallets := &fakeWalletDebitor{}
	enforcer := NewBillingEnforcer(subs, wallets, &fakeUsageAppender{}, newFakeAlerter(), 15, 20)

	outcome := enforcer.ChargeForResponse(context.Background(), chargeRequest())

	assert.Equal(t, BillingUnbilled, outcome.State)
	// Lỗi hạ tầng ở bước subscription thì không thử trừ ví
	assert.Equal(t, 0, wallets.calls)
}

func TestChargeForResponse_CanhBaoHanMucThap(t *testing.T) {
	// 100 tin, đã dùng 85 → còn 15% < ngưỡng 20%
	subs := &fakeSubConsumer{sub: &billingmodels.Subscription{MessagesLimit: 100, MessagesUsed: 85}}
	alerter := newFakeAlerter()
	enforcer := NewBillingEnforcer(subs, &fakeWalletDebitor{}, &fakeUsageAppender{}, alerter, 15, 20)

	outcome := enforcer.ChargeForResponse(context.Background(), chargeRequest())

	assert.Equal(t, BillingDebited, outcome.State)
	waitAlert(t, alerter.lowQuota, "low quota")
}

func TestChargeForResponse_CostLonHonToiThieu(t *testing.T) {
	subs := &fakeSubConsumer{err: common.ErrQuotaExhausted}
	wallets := &fakeWalletDebitor{}
	enforcer := NewBillingEnforcer(subs, wallets, &fakeUsageAppender{}, newFakeAlerter(), 15, 20)

	req := chargeRequest()
	req.Cost = 40

	enforcer.ChargeForResponse(context.Background(), req)

	assert.Equal(t, int64(40), wallets.lastAmount)
}
