package chatsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "wa_agent/internal/api/base/service"
	chatmodels "wa_agent/internal/api/chat/models"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// MessageService xử lý logic cho tin nhắn trong hội thoại
type MessageService struct {
	*basesvc.BaseServiceMongoImpl[chatmodels.Message]
}

// NewMessageService tạo mới MessageService
func NewMessageService() (*MessageService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Messages)
	if !exist {
		return nil, fmt.Errorf("failed to get messages collection: %v", common.ErrNotFound)
	}
	return &MessageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[chatmodels.Message](collection),
	}, nil
}

// StoreIncomingMessage lưu tin nhắn đến, dedup theo (conversationId, externalId).
// Webhook có thể gửi lại cùng một tin nhiều lần; upsert trên unique index đảm bảo
// mỗi externalId chỉ tạo đúng một bản ghi. Trả về created=false khi tin đã tồn tại.
func (s *MessageService) StoreIncomingMessage(ctx context.Context, conversationID primitive.ObjectID, externalID, body string, timestamp int64) (*chatmodels.Message, bool, error) {
	filter := bson.M{
		"conversationId": conversationID,
		"externalId":     externalID,
	}
	now := time.Now().UnixMilli()
	update := bson.M{
		"$setOnInsert": bson.M{
			"conversationId": conversationID,
			"externalId":     externalID,
			"direction":      chatmodels.MessageDirectionIn,
			"body":           body,
			"timestamp":      timestamp,
			"createdAt":      now,
			"updatedAt":      now,
		},
	}

	// Truy cập collection trực tiếp: cần UpsertedCount để phân biệt tin mới
	// với tin gửi lại, base layer không trả về thông tin này
	result, err := s.Collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, common.ConvertMongoError(err)
	}
	created := result.UpsertedCount > 0

	message, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		return nil, false, err
	}
	return &message, created, nil
}

// StoreOutgoingMessage lưu phản hồi của agent vào hội thoại.
// Tin đi không có id từ bridge nên sinh externalId riêng để không đụng
// unique index (conversationId, externalId).
func (s *MessageService) StoreOutgoingMessage(ctx context.Context, conversationID primitive.ObjectID, body string, tokens int, cost int64) (*chatmodels.Message, error) {
	message := chatmodels.Message{
		ConversationID: conversationID,
		Direction:      chatmodels.MessageDirectionOut,
		Body:           body,
		ExternalID:     "out-" + uuid.NewString(),
		Timestamp:      time.Now().Unix(),
		Tokens:         int64(tokens),
		Cost:           cost,
	}
	inserted, err := s.InsertOne(ctx, message)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

// BuildConversationContext lấy tối đa limit tin gần nhất trong cửa sổ windowHours,
// trả về theo thứ tự cũ → mới để ghép vào prompt. excludeID loại tin nhắn vừa
// lưu ra khỏi lịch sử vì tin mới được ghép riêng ở cuối prompt.
func (s *MessageService) BuildConversationContext(ctx context.Context, conversationID primitive.ObjectID, excludeID primitive.ObjectID, limit int, windowHours int) ([]chatmodels.Message, error) {
	if limit <= 0 {
		return []chatmodels.Message{}, nil
	}

	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour).UnixMilli()
	filter := bson.M{
		"conversationId": conversationID,
		"createdAt":      bson.M{"$gte": cutoff},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(int64(limit))

	messages, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	// Đảo lại: query sort mới → cũ để lấy đúng N tin gần nhất
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListByConversation liệt kê tin nhắn của một hội thoại, phân trang, mới nhất trước
func (s *MessageService) ListByConversation(ctx context.Context, conversationID primitive.ObjectID, page, limit int64) ([]chatmodels.Message, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	result, err := s.FindWithPagination(ctx, bson.M{"conversationId": conversationID}, page, limit, opts)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}
