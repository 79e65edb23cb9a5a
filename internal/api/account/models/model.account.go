package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConnectionStatus là trạng thái kết nối của một phiên WhatsApp.
// Dùng typed constants thay vì string tự do để switch được exhaustive.
type ConnectionStatus string

const (
	ConnectionDisconnected ConnectionStatus = "disconnected"  // Phiên đã ngắt kết nối
	ConnectionConnecting   ConnectionStatus = "connecting"    // Đang kết nối
	ConnectionConnected    ConnectionStatus = "connected"     // Đã kết nối, sẵn sàng nhận tin
	ConnectionPendingSetup ConnectionStatus = "pending_setup" // Vừa quét QR, chờ hoàn tất setup
	ConnectionError        ConnectionStatus = "error"         // Lỗi kết nối
)

// IsValid kiểm tra status có nằm trong tập giá trị hợp lệ không
func (s ConnectionStatus) IsValid() bool {
	switch s {
	case ConnectionDisconnected, ConnectionConnecting, ConnectionConnected, ConnectionPendingSetup, ConnectionError:
		return true
	}
	return false
}

// Account đại diện cho một phiên WhatsApp kết nối với hệ thống, kèm cấu hình AI agent.
// Collection: accounts
// Lifecycle: tạo khi quét QR (webhook), cập nhật bởi session-status webhook,
// agent config do chủ account sửa. Không bao giờ hard-delete: chỉ disable.
type Account struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"userId" bson:"userId"`                     // Chủ sở hữu account
	SessionID        string             `json:"sessionId" bson:"sessionId"`               // Định danh phiên từ messaging bridge (unique)
	SessionName      string             `json:"sessionName" bson:"sessionName"`           // Tên phiên do user đặt
	PhoneNumber      string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	ConnectionStatus ConnectionStatus   `json:"connectionStatus" bson:"connectionStatus"` // disconnected/connecting/connected/pending_setup/error

	// Cấu hình AI agent
	AgentEnabled         bool     `json:"agentEnabled" bson:"agentEnabled"`                                     // Agent có được phép trả lời không
	AgentModel           string   `json:"agentModel,omitempty" bson:"agentModel,omitempty"`                     // Model AI được chọn (rỗng = dùng default)
	AgentPrompt          string   `json:"agentPrompt,omitempty" bson:"agentPrompt,omitempty"`                   // System prompt / persona
	BusinessContext      string   `json:"businessContext,omitempty" bson:"businessContext,omitempty"`           // Thông tin doanh nghiệp tự do
	TriggerWords         []string `json:"triggerWords,omitempty" bson:"triggerWords,omitempty"`                 // Chỉ trả lời khi tin nhắn chứa từ khóa (rỗng = trả lời tất cả)
	IgnoreWords          []string `json:"ignoreWords,omitempty" bson:"ignoreWords,omitempty"`                   // Bỏ qua tin nhắn chứa từ khóa
	ResponseDelaySeconds int      `json:"responseDelaySeconds,omitempty" bson:"responseDelaySeconds,omitempty"` // Chính sách thời gian trả lời
	MaxTokens            int      `json:"maxTokens,omitempty" bson:"maxTokens,omitempty"`                       // Generation config, truyền nguyên vẹn tới provider
	Temperature          float64  `json:"temperature,omitempty" bson:"temperature,omitempty"`

	Disabled  bool  `json:"disabled" bson:"disabled"` // Soft-disable thay cho xóa
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
