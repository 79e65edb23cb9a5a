// Package webhooksvc chứa service cho domain Webhook (log).
package webhooksvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "wa_agent/internal/api/base/service"
	webhookmodels "wa_agent/internal/api/webhook/models"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// WebhookLogService là cấu trúc chứa các phương thức liên quan đến webhook logs
type WebhookLogService struct {
	*basesvc.BaseServiceMongoImpl[webhookmodels.WebhookLog]
}

// NewWebhookLogService tạo mới WebhookLogService
func NewWebhookLogService() (*WebhookLogService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.WebhookLogs)
	if !exist {
		return nil, fmt.Errorf("failed to get webhook_logs collection: %v", common.ErrNotFound)
	}
	return &WebhookLogService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[webhookmodels.WebhookLog](collection),
	}, nil
}

// CreateWebhookLog tạo mới webhook log
func (s *WebhookLogService) CreateWebhookLog(ctx context.Context, log webhookmodels.WebhookLog) (*webhookmodels.WebhookLog, error) {
	result, err := s.InsertOne(ctx, log)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProcessedStatus cập nhật trạng thái đã xử lý của webhook log
func (s *WebhookLogService) UpdateProcessedStatus(ctx context.Context, logID primitive.ObjectID, processed bool, errorMsg string) error {
	now := time.Now().UnixMilli()
	set := bson.M{
		"processed":    processed,
		"processError": errorMsg,
		"updatedAt":    now,
	}
	if processed {
		set["processedAt"] = now
	}

	_, err := s.Collection().UpdateOne(ctx, bson.M{"_id": logID}, bson.M{"$set": set}, options.Update())
	if err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// PruneOlderThan xóa các webhook log cũ hơn maxAge, dùng bởi cleanup worker
func (s *WebhookLogService) PruneOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	return s.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
}
