package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus là trạng thái của một subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// IsValid kiểm tra status có nằm trong tập giá trị hợp lệ không
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return true
	}
	return false
}

// Subscription là gói cước đang cấp cho một user.
// Collection: billing_subscriptions
// Invariant: tối đa một subscription active per user. Hết hạn được suy ra từ endAt;
// status expired chỉ là cache của trạng thái suy ra (worker cập nhật), query active
// luôn lọc thêm endAt nên tính đúng không phụ thuộc worker.
type Subscription struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	PackageID     primitive.ObjectID `json:"packageId" bson:"packageId"`
	MessagesLimit int64              `json:"messagesLimit" bson:"messagesLimit"` // Tổng số tin AI được phép trong kỳ
	MessagesUsed  int64              `json:"messagesUsed" bson:"messagesUsed"`   // Số tin đã dùng (tăng atomic, không bao giờ vượt limit)
	ContextLimit  int                `json:"contextLimit" bson:"contextLimit"`   // Số tin tối đa trong context window
	AccountsLimit int64              `json:"accountsLimit" bson:"accountsLimit"` // Số agent được bật đồng thời
	StartAt       int64              `json:"startAt" bson:"startAt"`
	EndAt         int64              `json:"endAt" bson:"endAt"`
	Status        SubscriptionStatus `json:"status" bson:"status"`
	CreatedAt     int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64              `json:"updatedAt" bson:"updatedAt"`
}

// Remaining trả về số tin còn lại trong hạn mức
func (s *Subscription) Remaining() int64 {
	r := s.MessagesLimit - s.MessagesUsed
	if r < 0 {
		return 0
	}
	return r
}
