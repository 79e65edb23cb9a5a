package billingsvc

import (
	"context"
	"fmt"

	basesvc "wa_agent/internal/api/base/service"
	billingmodels "wa_agent/internal/api/billing/models"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// UsageLogService ghi nhận audit log cho mỗi lần gọi AI thành công
type UsageLogService struct {
	*basesvc.BaseServiceMongoImpl[billingmodels.AIUsageLog]
}

// NewUsageLogService tạo mới UsageLogService
func NewUsageLogService() (*UsageLogService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.AIUsageLogs)
	if !exist {
		return nil, fmt.Errorf("failed to get ai_usage_logs collection: %v", common.ErrNotFound)
	}
	return &UsageLogService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[billingmodels.AIUsageLog](collection),
	}, nil
}

// Append ghi một bản ghi usage. Log là append-only, không có API sửa/xóa.
func (s *UsageLogService) Append(ctx context.Context, log billingmodels.AIUsageLog) (*billingmodels.AIUsageLog, error) {
	created, err := s.InsertOne(ctx, log)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
