package accountsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	accountdto "wa_agent/internal/api/account/dto"
	accountmodels "wa_agent/internal/api/account/models"
	basesvc "wa_agent/internal/api/base/service"
	"wa_agent/internal/common"
	"wa_agent/internal/global"
)

// AccountService xử lý logic cho WhatsApp accounts (phiên kết nối + cấu hình agent)
type AccountService struct {
	*basesvc.BaseServiceMongoImpl[accountmodels.Account]
}

// NewAccountService tạo mới AccountService
func NewAccountService() (*AccountService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Accounts)
	if !exist {
		return nil, fmt.Errorf("failed to get accounts collection: %v", common.ErrNotFound)
	}
	return &AccountService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[accountmodels.Account](collection),
	}, nil
}

// FindBySessionID tìm account theo session identifier từ messaging bridge
func (s *AccountService) FindBySessionID(ctx context.Context, sessionID string) (*accountmodels.Account, error) {
	account, err := s.FindOne(ctx, bson.M{"sessionId": sessionID}, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// UpdateConnectionStatus cập nhật trạng thái kết nối của account theo session-status webhook.
// Last-write-wins: webhook có thể đến lặp hoặc sai thứ tự, chỉ ghi đè status và phone.
func (s *AccountService) UpdateConnectionStatus(ctx context.Context, sessionID string, status accountmodels.ConnectionStatus, phoneNumber string) (*accountmodels.Account, error) {
	if !status.IsValid() {
		return nil, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Trạng thái kết nối không hợp lệ: %s", status),
			common.StatusBadRequest,
			nil,
		)
	}

	set := bson.M{"connectionStatus": status}
	if phoneNumber != "" {
		set["phoneNumber"] = phoneNumber
	}

	updated, err := s.UpdateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": set}, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// UpsertFromQRScan tạo hoặc cập nhật account khi user quét QR code.
// Key: (userId, sessionName): quét lại cùng phiên không tạo account trùng.
// Account mới nhận status pending_setup; sessionId được bridge cấp khi phiên lên.
func (s *AccountService) UpsertFromQRScan(ctx context.Context, userID primitive.ObjectID, sessionID, sessionName string) (*accountmodels.Account, error) {
	filter := bson.M{"userId": userID, "sessionName": sessionName}
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"sessionId":        sessionID,
			"connectionStatus": accountmodels.ConnectionPendingSetup,
		},
		SetOnInsert: map[string]interface{}{
			"userId":       userID,
			"sessionName":  sessionName,
			"agentEnabled": false,
			"disabled":     false,
		},
	}

	account, err := s.Upsert(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAgentConfig cập nhật cấu hình AI agent của account.
// Chỉ ghi các field có mặt trong input (partial update).
func (s *AccountService) UpdateAgentConfig(ctx context.Context, sessionID string, input *accountdto.AgentConfigUpdateInput) (*accountmodels.Account, error) {
	set := bson.M{}
	if input.AgentEnabled != nil {
		set["agentEnabled"] = *input.AgentEnabled
	}
	if input.AgentModel != "" {
		set["agentModel"] = input.AgentModel
	}
	if input.AgentPrompt != "" {
		set["agentPrompt"] = input.AgentPrompt
	}
	if input.BusinessContext != "" {
		set["businessContext"] = input.BusinessContext
	}
	if input.TriggerWords != nil {
		set["triggerWords"] = input.TriggerWords
	}
	if input.IgnoreWords != nil {
		set["ignoreWords"] = input.IgnoreWords
	}
	if input.ResponseDelaySeconds != nil {
		set["responseDelaySeconds"] = *input.ResponseDelaySeconds
	}
	if input.MaxTokens != nil {
		set["maxTokens"] = *input.MaxTokens
	}
	if input.Temperature != nil {
		set["temperature"] = *input.Temperature
	}

	if len(set) == 0 {
		return s.FindBySessionID(ctx, sessionID)
	}

	updated, err := s.UpdateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": set}, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// CountEnabledAgents đếm số agent đang bật của một user (dùng cho Account Gate)
func (s *AccountService) CountEnabledAgents(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.CountDocuments(ctx, bson.M{
		"userId":       userID,
		"agentEnabled": true,
		"disabled":     false,
	})
}

// FindByUser liệt kê accounts của một user, mới nhất trước
func (s *AccountService) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]accountmodels.Account, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	return s.Find(ctx, bson.M{"userId": userID, "disabled": false}, opts)
}
