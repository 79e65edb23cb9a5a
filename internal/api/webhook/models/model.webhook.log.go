package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookLog lưu lại mọi webhook nhận được từ messaging bridge để debug và đối soát.
// Collection: webhook_logs
// Log được ghi TRƯỚC khi xử lý: kể cả payload lỗi parse cũng phải có vết.
type WebhookLog struct {
	ID           primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	Source       string                 `json:"source" bson:"source"`               // incoming-message | session-status | qr-scan
	Event        string                 `json:"event,omitempty" bson:"event,omitempty"`
	SessionID    string                 `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty" bson:"payload,omitempty"` // Payload đã parse
	RawBody      string                 `json:"rawBody,omitempty" bson:"rawBody,omitempty"` // Body gốc khi parse lỗi
	Processed    bool                   `json:"processed" bson:"processed"`
	ProcessError string                 `json:"processError,omitempty" bson:"processError,omitempty"`
	ProcessedAt  int64                  `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CreatedAt    int64                  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64                  `json:"updatedAt" bson:"updatedAt"`
}
