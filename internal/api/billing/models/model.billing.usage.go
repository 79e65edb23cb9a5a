package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillingMode cho biết một lần gọi AI được tính tiền bằng cách nào.
const (
	BillingModeSubscription = "subscription" // Trừ hạn mức subscription
	BillingModeWallet       = "wallet"       // Auto-debit từ ví
	BillingModeNone         = "none"         // Không tính tiền (billing thất bại nhưng reply vẫn gửi)
)

// AIUsageLog là bản ghi audit append-only cho mỗi lần gọi AI thành công.
// Collection: ai_usage_logs
// Không bao giờ sửa hay xóa. Generation thất bại không ghi log.
type AIUsageLog struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CorrelationID  string             `json:"correlationId" bson:"correlationId"` // UUID gắn với một lần gọi AI
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	SessionID      string             `json:"sessionId" bson:"sessionId"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversationId"`
	Model          string             `json:"model" bson:"model"`
	Tokens         int64              `json:"tokens" bson:"tokens"`
	Cost           int64              `json:"cost" bson:"cost"`
	BillingMode    string             `json:"billingMode" bson:"billingMode"` // subscription | wallet | none
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
}
