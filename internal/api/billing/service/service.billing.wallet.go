package billingsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "wa_agent/internal/api/base/service"
	billingmodels "wa_agent/internal/api/billing/models"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// WalletService xử lý logic cho ví tiền của user
type WalletService struct {
	*basesvc.BaseServiceMongoImpl[billingmodels.Wallet]
}

// NewWalletService tạo mới WalletService
func NewWalletService() (*WalletService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.BillingWallets)
	if !exist {
		return nil, fmt.Errorf("failed to get billing_wallets collection: %v", common.ErrNotFound)
	}
	return &WalletService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[billingmodels.Wallet](collection),
	}, nil
}

// FindByUser tìm ví của user (nil nếu chưa có ví)
func (s *WalletService) FindByUser(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Wallet, error) {
	wallet, err := s.FindOne(ctx, bson.M{"userId": userID}, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// Debit trừ tiền ví theo conditional update: filter yêu cầu balance >= amount
// nên balance không bao giờ âm. ModifiedCount == 0 nghĩa là không đủ tiền
// (hoặc chưa có ví): trả về common.ErrInsufficientFunds, không phải kết quả
// của một lần đọc rồi ghi.
func (s *WalletService) Debit(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Số tiền trừ không hợp lệ: %d", amount),
			common.StatusBadRequest,
			nil,
		)
	}

	filter := bson.M{
		"userId":  userID,
		"balance": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updatedAt": time.Now().UnixMilli()},
	}

	result, err := s.Collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.ModifiedCount == 0 {
		return common.ErrInsufficientFunds
	}
	return nil
}

// Credit cộng tiền vào ví (nạp tiền). Tạo ví nếu chưa có.
func (s *WalletService) Credit(ctx context.Context, userID primitive.ObjectID, amount int64) (*billingmodels.Wallet, error) {
	if amount <= 0 {
		return nil, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Số tiền nạp không hợp lệ: %d", amount),
			common.StatusBadRequest,
			nil,
		)
	}

	update := &basesvc.UpdateData{
		Inc:         map[string]interface{}{"balance": amount},
		SetOnInsert: map[string]interface{}{"userId": userID},
	}
	wallet, err := s.Upsert(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}
