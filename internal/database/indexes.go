// Package database - Index cho các collection của pipeline tin nhắn (unique, compound).
package database

import (
	"context"
	"strings"

	"wa_agent/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexModels khai báo toàn bộ index theo tên collection.
// Key của index phải khớp bson tag của model tương ứng, nếu lệch thì
// query vẫn chạy nhưng không dùng được index.
func indexModels(names global.MongoDB_CollectionName) map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		names.Accounts: {
			// sessionId unique: mỗi phiên WhatsApp là một account
			{
				Keys:    bson.D{{Key: "sessionId", Value: 1}},
				Options: options.Index().SetName("account_session_unique").SetUnique(true),
			},
			// (userId, sessionName) unique: upsert khi quét QR
			{
				Keys: bson.D{
					{Key: "userId", Value: 1},
					{Key: "sessionName", Value: 1},
				},
				Options: options.Index().SetName("account_user_session_name").SetUnique(true),
			},
		},
		names.Conversations: {
			// (sessionId, contactPhone) unique: find-or-create atomic
			{
				Keys: bson.D{
					{Key: "sessionId", Value: 1},
					{Key: "contactPhone", Value: 1},
				},
				Options: options.Index().SetName("conversation_session_phone_unique").SetUnique(true),
			},
		},
		names.Messages: {
			// (conversationId, externalId) unique: dedup tin nhắn từ webhook
			{
				Keys: bson.D{
					{Key: "conversationId", Value: 1},
					{Key: "externalId", Value: 1},
				},
				Options: options.Index().SetName("message_conv_external_unique").SetUnique(true),
			},
			// (conversationId, createdAt desc): query context window
			{
				Keys: bson.D{
					{Key: "conversationId", Value: 1},
					{Key: "createdAt", Value: -1},
				},
				Options: options.Index().SetName("message_conv_created"),
			},
		},
		names.BillingWallets: {
			// userId unique: mỗi user một ví
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetName("wallet_user_unique").SetUnique(true),
			},
		},
		names.BillingSubscriptions: {
			// (userId, status): tìm subscription active của user
			{
				Keys: bson.D{
					{Key: "userId", Value: 1},
					{Key: "status", Value: 1},
				},
				Options: options.Index().SetName("subscription_user_status"),
			},
			// (status, endAt): worker quét subscription hết hạn
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
					{Key: "endAt", Value: 1},
				},
				Options: options.Index().SetName("subscription_status_end"),
			},
		},
		names.BillingPackages: {
			// name unique: seed không tạo trùng
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetName("package_name_unique").SetUnique(true),
			},
		},
		names.AIUsageLogs: {
			// (sessionId, createdAt desc): tra cứu usage theo phiên
			{
				Keys: bson.D{
					{Key: "sessionId", Value: 1},
					{Key: "createdAt", Value: -1},
				},
				Options: options.Index().SetName("usage_session_created"),
			},
		},
		names.WebhookLogs: {
			// createdAt: worker cleanup quét theo tuổi
			{
				Keys:    bson.D{{Key: "createdAt", Value: 1}},
				Options: options.Index().SetName("webhook_log_created"),
			},
		},
	}
}

// CreateIndexes tạo toàn bộ index cho các collection.
// Gọi một lần khi khởi động server, sau khi kết nối MongoDB.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	for collectionName, models := range indexModels(global.MongoDB_ColNames) {
		collection := db.Collection(collectionName)
		for _, model := range models {
			if _, err := collection.Indexes().CreateOne(ctx, model); err != nil && !isIndexExistsError(err) {
				return err
			}
		}
	}
	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
