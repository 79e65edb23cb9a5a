package billingsvc

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	billingmodels "wa_agent/internal/api/billing/models"
	"wa_agent/internal/common"
	"wa_agent/internal/logger"
)

// BillingState là trạng thái của một lượt tính tiền.
type BillingState string

const (
	BillingUnbilled          BillingState = "unbilled"           // Chưa tính (hoặc lỗi hạ tầng khi tính)
	BillingQuotaChecked      BillingState = "quota_checked"      // Đã kiểm tra hạn mức subscription
	BillingDebited           BillingState = "debited"            // Đã trừ thành công (subscription hoặc ví)
	BillingInsufficientFunds BillingState = "insufficient_funds" // Hết hạn mức và ví không đủ
)

// ChargeRequest mô tả một lần gọi AI thành công cần tính tiền
type ChargeRequest struct {
	UserID         primitive.ObjectID
	SessionID      string
	ConversationID primitive.ObjectID
	Model          string
	Tokens         int64
	Cost           int64 // Chi phí do provider adapter tính (tokens × đơn giá)
	CorrelationID  string
}

// BillingOutcome là kết quả của state machine tính tiền.
// Orchestrator không bao giờ nhận error từ enforcer: billing thất bại
// không được chặn việc gửi reply.
type BillingOutcome struct {
	State          BillingState
	Mode           string // billingmodels.BillingMode*
	Cost           int64  // Số tiền thực trừ (0 nếu không trừ được)
	QuotaRemaining int64  // -1 nếu không áp dụng
	QuotaLimit     int64  // -1 nếu không áp dụng
}

// Charged cho biết lượt này đã trừ tiền thành công chưa
func (o *BillingOutcome) Charged() bool {
	return o.State == BillingDebited
}

// Các collaborator của enforcer, inject qua constructor để test được với fakes.
type subscriptionConsumer interface {
	ConsumeMessageCredit(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Subscription, error)
}

type walletDebitor interface {
	Debit(ctx context.Context, userID primitive.ObjectID, amount int64) error
}

type usageAppender interface {
	Append(ctx context.Context, log billingmodels.AIUsageLog) (*billingmodels.AIUsageLog, error)
}

type billingAlerter interface {
	SendLowQuotaAlert(userID string, remaining, limit int64)
	SendBillingFailureAlert(userID string, sessionID string, amount int64)
}

// BillingEnforcer chạy state machine Unbilled → QuotaChecked → {Debited | InsufficientFunds}
// cho mỗi AI response thành công: trừ hạn mức subscription trước, hết thì auto-debit ví.
type BillingEnforcer struct {
	subscriptions subscriptionConsumer
	wallets       walletDebitor
	usageLogs     usageAppender
	alerter       billingAlerter

	minMessageCost       int64 // Chi phí tối thiểu mỗi tin khi trừ ví
	lowQuotaThresholdPct int   // Ngưỡng % còn lại để gửi cảnh báo
}

// NewBillingEnforcer tạo mới BillingEnforcer với các collaborator được inject
func NewBillingEnforcer(subs subscriptionConsumer, wallets walletDebitor, usageLogs usageAppender, alerter billingAlerter, minMessageCost int64, lowQuotaThresholdPct int) *BillingEnforcer {
	return &BillingEnforcer{
		subscriptions:        subs,
		wallets:              wallets,
		usageLogs:            usageLogs,
		alerter:              alerter,
		minMessageCost:       minMessageCost,
		lowQuotaThresholdPct: lowQuotaThresholdPct,
	}
}

// ChargeForResponse tính tiền cho một AI response thành công.
// Không bao giờ trả về error: mọi thất bại được thể hiện trong BillingOutcome
// và log lại, reply vẫn phải được gửi cho user.
func (e *BillingEnforcer) ChargeForResponse(ctx context.Context, req *ChargeRequest) *BillingOutcome {
	log := logger.GetAppLogger().WithFields(logrus.Fields{
		"user_id":        req.UserID.Hex(),
		"session_id":     req.SessionID,
		"correlation_id": req.CorrelationID,
	})

	outcome := &BillingOutcome{
		State:          BillingUnbilled,
		Mode:           billingmodels.BillingModeNone,
		QuotaRemaining: -1,
		QuotaLimit:     -1,
	}

	// Bước 1: trừ hạn mức subscription (atomic, thất bại = hết hạn mức hoặc không có sub)
	sub, err := e.subscriptions.ConsumeMessageCredit(ctx, req.UserID)
	outcome.State = BillingQuotaChecked

	if err == nil {
		outcome.State = BillingDebited
		outcome.Mode = billingmodels.BillingModeSubscription
		outcome.QuotaRemaining = sub.Remaining()
		outcome.QuotaLimit = sub.MessagesLimit
		outcome.Cost = 0 // Subscription trừ theo đơn vị tin, không trừ credit

		log.WithFields(logrus.Fields{
			"quota_remaining": outcome.QuotaRemaining,
			"quota_limit":     outcome.QuotaLimit,
		}).Info("💸 [BILLING] Đã trừ 1 tin từ subscription")

		// Cảnh báo khi hạn mức còn lại xuống dưới ngưỡng: best-effort, ngoài critical path
		if e.crossedLowQuota(outcome.QuotaRemaining, outcome.QuotaLimit) {
			go e.alerter.SendLowQuotaAlert(req.UserID.Hex(), outcome.QuotaRemaining, outcome.QuotaLimit)
		}

		e.appendUsage(ctx, req, 0, billingmodels.BillingModeSubscription, log)
		return outcome
	}

	if !errors.Is(err, common.ErrQuotaExhausted) {
		// Lỗi hạ tầng khi kiểm tra hạn mức: không chặn reply, ghi nhận và dừng tính tiền
		log.WithError(err).Error("💸 [BILLING] Lỗi khi trừ hạn mức subscription")
		outcome.State = BillingUnbilled
		return outcome
	}

	// Bước 2: hạn mức hết (hoặc không có subscription): auto-debit ví
	amount := req.Cost
	if amount < e.minMessageCost {
		amount = e.minMessageCost
	}

	err = e.wallets.Debit(ctx, req.UserID, amount)
	if err == nil {
		outcome.State = BillingDebited
		outcome.Mode = billingmodels.BillingModeWallet
		outcome.Cost = amount

		log.WithField("amount", amount).Info("💸 [BILLING] Đã auto-debit từ ví")
		e.appendUsage(ctx, req, amount, billingmodels.BillingModeWallet, log)
		return outcome
	}

	if errors.Is(err, common.ErrInsufficientFunds) {
		// Không đủ tiền: reply vẫn gửi, ghi nhận cho operator
		outcome.State = BillingInsufficientFunds
		log.WithField("amount", amount).Warn("💸 [BILLING] Hết hạn mức và ví không đủ tiền")
		go e.alerter.SendBillingFailureAlert(req.UserID.Hex(), req.SessionID, amount)
		e.appendUsage(ctx, req, 0, billingmodels.BillingModeNone, log)
		return outcome
	}

	log.WithError(err).Error("💸 [BILLING] Lỗi khi trừ tiền ví")
	outcome.State = BillingUnbilled
	return outcome
}

// crossedLowQuota kiểm tra hạn mức còn lại đã xuống dưới ngưỡng cảnh báo chưa
func (e *BillingEnforcer) crossedLowQuota(remaining, limit int64) bool {
	if limit <= 0 || e.lowQuotaThresholdPct <= 0 {
		return false
	}
	return remaining*100 < int64(e.lowQuotaThresholdPct)*limit
}

// appendUsage ghi usage log với số tiền thực trừ; thất bại chỉ log,
// không ảnh hưởng billing path
func (e *BillingEnforcer) appendUsage(ctx context.Context, req *ChargeRequest, cost int64, mode string, log *logrus.Entry) {
	usage := billingmodels.AIUsageLog{
		CorrelationID:  req.CorrelationID,
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		ConversationID: req.ConversationID,
		Model:          req.Model,
		Tokens:         req.Tokens,
		Cost:           cost,
		BillingMode:    mode,
	}
	if _, err := e.usageLogs.Append(ctx, usage); err != nil {
		log.WithError(err).Error("💸 [BILLING] Không ghi được usage log")
	}
}
