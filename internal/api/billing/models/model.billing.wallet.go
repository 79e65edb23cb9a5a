package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet là ví tiền của một user.
// Collection: billing_wallets
// Invariant: balance không bao giờ âm: Debit chỉ trừ qua conditional update
// (filter balance >= amount), không bao giờ read-then-write.
type Wallet struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"` // Mỗi user một ví (unique index)
	Balance   int64              `json:"balance" bson:"balance"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}
