package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
// Nó chứa thông tin cơ sở dữ liệu, AI provider và billing
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`               // Chế độ khởi tạo (seed dữ liệu)
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// AI Provider Configuration
	AI_BaseURL         string  `env:"AI_BASE_URL,required"`                    // Base URL của AI provider (OpenAI-compatible)
	AI_APIKey          string  `env:"AI_API_KEY,required"`                     // API key của AI provider
	AI_DefaultModel    string  `env:"AI_DEFAULT_MODEL" envDefault:"gpt-4o-mini"` // Model mặc định khi account không chỉ định
	AI_RequestTimeout  int     `env:"AI_REQUEST_TIMEOUT" envDefault:"30"`      // Timeout gọi AI (giây)
	AI_MinMessageCost  int64   `env:"AI_MIN_MESSAGE_COST" envDefault:"15"`     // Chi phí tối thiểu mỗi tin nhắn (đơn vị credit)
	AI_CostPer1KTokens float64 `env:"AI_COST_PER_1K_TOKENS" envDefault:"15"`   // Chi phí trên 1000 tokens (đơn vị credit)

	// Conversation Context Configuration
	ContextWindowSize  int `env:"CONTEXT_WINDOW_SIZE" envDefault:"20"`  // Số tin nhắn tối đa đưa vào context
	ContextWindowHours int `env:"CONTEXT_WINDOW_HOURS" envDefault:"24"` // Chỉ lấy tin nhắn trong khoảng thời gian này (giờ)

	// Billing Configuration
	LowQuotaThresholdPct int `env:"LOW_QUOTA_THRESHOLD_PCT" envDefault:"20"` // Ngưỡng % quota còn lại để gửi cảnh báo

	// Reply Templates
	FallbackReply string `env:"FALLBACK_REPLY" envDefault:"Xin lỗi, hệ thống đang bận. Vui lòng thử lại sau ít phút."`                 // Trả lời khi AI lỗi
	NonTextReply  string `env:"NON_TEXT_REPLY" envDefault:"Xin lỗi, hiện tại tôi chỉ có thể trả lời tin nhắn văn bản."`                 // Trả lời khi nhận tin nhắn không phải text

	// SMTP Configuration (cảnh báo quota)
	SMTP_Host     string `env:"SMTP_HOST"`                 // SMTP server host
	SMTP_Port     int    `env:"SMTP_PORT" envDefault:"587"` // SMTP server port
	SMTP_Username string `env:"SMTP_USERNAME"`             // SMTP username
	SMTP_Password string `env:"SMTP_PASSWORD"`             // SMTP password
	SMTP_From     string `env:"SMTP_FROM"`                 // Địa chỉ gửi
	SMTP_AlertTo  string `env:"SMTP_ALERT_TO"`             // Địa chỉ operator nhận cảnh báo billing/quota

	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
