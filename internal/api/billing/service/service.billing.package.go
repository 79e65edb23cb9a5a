package billingsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "wa_agent/internal/api/base/service"
	billingmodels "wa_agent/internal/api/billing/models"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// PackageService xử lý logic cho các gói cước
type PackageService struct {
	*basesvc.BaseServiceMongoImpl[billingmodels.Package]
}

// NewPackageService tạo mới PackageService
func NewPackageService() (*PackageService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.BillingPackages)
	if !exist {
		return nil, fmt.Errorf("failed to get billing_packages collection: %v", common.ErrNotFound)
	}
	return &PackageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[billingmodels.Package](collection),
	}, nil
}

// FindActivePackages liệt kê các gói đang bán, rẻ nhất trước
func (s *PackageService) FindActivePackages(ctx context.Context) ([]billingmodels.Package, error) {
	opts := options.Find().SetSort(bson.M{"price": 1})
	return s.Find(ctx, bson.M{"isActive": true}, opts)
}

// SeedDefault upsert một gói mặc định theo name. Gọi từ init.data.go;
// chạy lặp lại không tạo bản ghi trùng.
func (s *PackageService) SeedDefault(ctx context.Context, pkg billingmodels.Package) (*billingmodels.Package, error) {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"description":   pkg.Description,
			"price":         pkg.Price,
			"messagesLimit": pkg.MessagesLimit,
			"contextLimit":  pkg.ContextLimit,
			"accountsLimit": pkg.AccountsLimit,
			"durationDays":  pkg.DurationDays,
			"isActive":      pkg.IsActive,
		},
		SetOnInsert: map[string]interface{}{
			"name": pkg.Name,
		},
	}
	seeded, err := s.Upsert(ctx, bson.M{"name": pkg.Name}, update)
	if err != nil {
		return nil, err
	}
	return &seeded, nil
}
