package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation là luồng hội thoại giữa một account và một contact bên ngoài.
// Collection: conversations
// Key duy nhất: (sessionId, contactPhone): tạo lazy khi contact nhắn tin lần đầu,
// không bao giờ xóa. lastMessageAt cập nhật theo mỗi tin nhắn vào/ra.
type Conversation struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID     string             `json:"sessionId" bson:"sessionId"`       // Phiên WhatsApp sở hữu hội thoại
	ContactPhone  string             `json:"contactPhone" bson:"contactPhone"` // Số điện thoại đã normalize từ JID
	ContactName   string             `json:"contactName,omitempty" bson:"contactName,omitempty"`
	IsGroup       bool               `json:"isGroup" bson:"isGroup"`
	LastMessageAt int64              `json:"lastMessageAt" bson:"lastMessageAt"`
	CreatedAt     int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64              `json:"updatedAt" bson:"updatedAt"`
}
