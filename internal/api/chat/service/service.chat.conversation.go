package chatsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "wa_agent/internal/api/base/models"
	basesvc "wa_agent/internal/api/base/service"
	chatmodels "wa_agent/internal/api/chat/models"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// ConversationService xử lý logic cho hội thoại
type ConversationService struct {
	*basesvc.BaseServiceMongoImpl[chatmodels.Conversation]
}

// NewConversationService tạo mới ConversationService
func NewConversationService() (*ConversationService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Conversations)
	if !exist {
		return nil, fmt.Errorf("failed to get conversations collection: %v", common.ErrNotFound)
	}
	return &ConversationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[chatmodels.Conversation](collection),
	}, nil
}

// FindOrCreateConversation tìm hoặc tạo hội thoại cho (sessionId, contactPhone).
// Idempotent dưới concurrency: một FindOneAndUpdate upsert duy nhất trên unique
// index (sessionId, contactPhone): hai tin đến đồng thời cho contact mới không
// bao giờ tạo hai hội thoại. Identity fields chỉ set khi insert ($setOnInsert).
func (s *ConversationService) FindOrCreateConversation(ctx context.Context, sessionID, contactPhone, contactName string, isGroup bool) (*chatmodels.Conversation, error) {
	filter := bson.M{
		"sessionId":    sessionID,
		"contactPhone": contactPhone,
	}

	update := &basesvc.UpdateData{
		// Gọi một lần cho mỗi tin nhắn đến nên lastMessageAt luôn theo kịp chiều vào,
		// chiều ra do TouchLastMessage cập nhật
		Set: map[string]interface{}{
			"lastMessageAt": time.Now().UnixMilli(),
		},
		SetOnInsert: map[string]interface{}{
			"sessionId":    sessionID,
			"contactPhone": contactPhone,
			"isGroup":      isGroup,
		},
	}
	// Tên contact có thể đổi theo thời gian, ghi đè khi bridge gửi kèm
	if contactName != "" {
		update.Set["contactName"] = contactName
	}

	conversation, err := s.Upsert(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// TouchLastMessage cập nhật mốc hoạt động cuối của hội thoại
func (s *ConversationService) TouchLastMessage(ctx context.Context, conversationID primitive.ObjectID) error {
	_, err := s.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"lastMessageAt": time.Now().UnixMilli()}},
		nil,
	)
	return err
}

// ListBySession liệt kê hội thoại của một phiên, phân trang, hoạt động gần nhất trước
func (s *ConversationService) ListBySession(ctx context.Context, sessionID string, page, limit int64) (*basemodels.PaginateResult[chatmodels.Conversation], error) {
	opts := options.Find().SetSort(bson.M{"lastMessageAt": -1})
	return s.FindWithPagination(ctx, bson.M{"sessionId": sessionID}, page, limit, opts)
}
