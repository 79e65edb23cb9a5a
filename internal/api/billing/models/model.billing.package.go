package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Package định nghĩa một gói cước mà subscription tham chiếu tới.
// Collection: billing_packages
// Seed mặc định trong init.data.go; name là unique.
type Package struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	Price         int64              `json:"price" bson:"price"`                 // Giá gói (đơn vị credit)
	MessagesLimit int64              `json:"messagesLimit" bson:"messagesLimit"` // Hạn mức tin AI trong kỳ
	ContextLimit  int                `json:"contextLimit" bson:"contextLimit"`   // Số tin tối đa trong context window
	AccountsLimit int64              `json:"accountsLimit" bson:"accountsLimit"` // Số agent bật đồng thời
	DurationDays  int                `json:"durationDays" bson:"durationDays"`   // Thời hạn gói (ngày)
	IsActive      bool               `json:"isActive" bson:"isActive"`           // Gói còn bán không
	CreatedAt     int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64              `json:"updatedAt" bson:"updatedAt"`
}
