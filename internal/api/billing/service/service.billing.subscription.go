package billingsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "wa_agent/internal/api/base/service"
	billingmodels "wa_agent/internal/api/billing/models"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// SubscriptionService xử lý logic cho billing subscriptions
type SubscriptionService struct {
	*basesvc.BaseServiceMongoImpl[billingmodels.Subscription]
}

// NewSubscriptionService tạo mới SubscriptionService
func NewSubscriptionService() (*SubscriptionService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.BillingSubscriptions)
	if !exist {
		return nil, fmt.Errorf("failed to get billing_subscriptions collection: %v", common.ErrNotFound)
	}
	return &SubscriptionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[billingmodels.Subscription](collection),
	}, nil
}

// activeFilter trả về filter subscription còn hiệu lực của user.
// Lọc cả endAt để tính đúng không phụ thuộc worker expiry đã chạy hay chưa.
func activeFilter(userID primitive.ObjectID, now int64) bson.M {
	return bson.M{
		"userId": userID,
		"status": billingmodels.SubscriptionActive,
		"endAt":  bson.M{"$gt": now},
	}
}

// FindActiveByUser tìm subscription đang hiệu lực của user (nil nếu không có)
func (s *SubscriptionService) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Subscription, error) {
	now := time.Now().UnixMilli()
	sub, err := s.FindOne(ctx, activeFilter(userID, now), nil)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// ConsumeMessageCredit trừ một tin từ hạn mức subscription đang hiệu lực của user.
// Toàn bộ điều kiện nằm trong filter của một FindOneAndUpdate duy nhất
// ($expr: messagesUsed < messagesLimit) nên hai tin đến đồng thời không bao giờ
// trừ quá limit. Trả về common.ErrQuotaExhausted khi không có subscription hiệu lực
// hoặc hạn mức đã hết: caller chuyển sang auto-debit ví.
func (s *SubscriptionService) ConsumeMessageCredit(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Subscription, error) {
	now := time.Now().UnixMilli()
	filter := activeFilter(userID, now)
	filter["$expr"] = bson.M{"$lt": bson.A{"$messagesUsed", "$messagesLimit"}}

	update := bson.M{
		"$inc": bson.M{"messagesUsed": 1},
		"$set": bson.M{"updatedAt": now},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// Dùng collection trực tiếp: filter chứa $expr và update đã có updatedAt,
	// không cần lớp chuyển đổi của base service.
	var sub billingmodels.Subscription
	err := s.Collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&sub)
	if err != nil {
		converted := common.ConvertMongoError(err)
		if common.IsNotFound(converted) {
			return nil, common.ErrQuotaExhausted
		}
		return nil, converted
	}
	return &sub, nil
}

// ExpireOverdue đánh dấu expired cho các subscription active đã quá endAt.
// Gọi định kỳ từ SubscriptionExpiryWorker. Trả về số subscription đã cập nhật.
func (s *SubscriptionService) ExpireOverdue(ctx context.Context) (int64, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{
		"status": billingmodels.SubscriptionActive,
		"endAt":  bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"status": billingmodels.SubscriptionExpired}}
	return s.UpdateMany(ctx, filter, update, nil)
}

// CreateFromPackage cấp một subscription mới cho user từ một package.
// Hủy các subscription active cũ trước để giữ invariant một active per user.
func (s *SubscriptionService) CreateFromPackage(ctx context.Context, userID primitive.ObjectID, pkg *billingmodels.Package) (*billingmodels.Subscription, error) {
	now := time.Now()

	// Hủy subscription active hiện tại (nếu có)
	_, err := s.UpdateMany(ctx,
		bson.M{"userId": userID, "status": billingmodels.SubscriptionActive},
		bson.M{"$set": bson.M{"status": billingmodels.SubscriptionCancelled}},
		nil,
	)
	if err != nil {
		return nil, err
	}

	sub := billingmodels.Subscription{
		UserID:        userID,
		PackageID:     pkg.ID,
		MessagesLimit: pkg.MessagesLimit,
		MessagesUsed:  0,
		ContextLimit:  pkg.ContextLimit,
		AccountsLimit: pkg.AccountsLimit,
		StartAt:       now.UnixMilli(),
		EndAt:         now.AddDate(0, 0, pkg.DurationDays).UnixMilli(),
		Status:        billingmodels.SubscriptionActive,
	}

	created, err := s.InsertOne(ctx, sub)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
