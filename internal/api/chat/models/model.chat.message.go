package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageDirection là chiều của một tin nhắn.
type MessageDirection string

const (
	MessageDirectionIn  MessageDirection = "in"  // Tin từ contact gửi tới
	MessageDirectionOut MessageDirection = "out" // Tin AI trả lời
)

// IsValid kiểm tra direction có hợp lệ không
func (d MessageDirection) IsValid() bool {
	return d == MessageDirectionIn || d == MessageDirectionOut
}

// Message là bản ghi bất biến của một tin nhắn đã trao đổi.
// Collection: messages
// Key dedup: (conversationId, externalId): bridge có thể gửi lại webhook,
// cùng externalId chỉ tồn tại một bản ghi. Tokens/Cost chỉ có trên tin AI gửi ra.
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversationId"`
	Direction      MessageDirection   `json:"direction" bson:"direction"` // in | out
	Body           string             `json:"body" bson:"body"`
	ExternalID     string             `json:"externalId" bson:"externalId"` // ID tin nhắn từ messaging bridge
	Timestamp      int64              `json:"timestamp" bson:"timestamp"`   // Thời điểm tin nhắn theo bridge (unix giây)
	Tokens         int64              `json:"tokens,omitempty" bson:"tokens,omitempty"`
	Cost           int64              `json:"cost,omitempty" bson:"cost,omitempty"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`
}
