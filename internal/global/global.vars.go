package global

import (
	"wa_agent/config"
	"wa_agent/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Accounts             string // Tên collection cho tài khoản WhatsApp (session)
	Conversations        string // Tên collection cho cuộc trò chuyện
	Messages             string // Tên collection cho tin nhắn
	BillingSubscriptions string // Tên collection cho subscription
	BillingWallets       string // Tên collection cho ví tiền
	BillingPackages      string // Tên collection cho gói cước
	AIUsageLogs          string // Tên collection cho log sử dụng AI
	WebhookLogs          string // Tên collection cho log webhook
}

// Các biến toàn cục
var Validate *validator.Validate            // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client           // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration      // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName // Tên các collection, gán giá trị lúc khởi động (cmd/server/init.go)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
