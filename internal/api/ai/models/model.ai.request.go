package models

import "time"

// AiRequest là request đã lắp ráp hoàn chỉnh gửi cho AI provider:
// prompt cuối cùng cộng các tham số sinh văn bản
type AiRequest struct {
	Prompt      string  `json:"prompt"`      // Prompt hoàn chỉnh (persona + quy tắc + bối cảnh + lịch sử + tin mới)
	Model       string  `json:"model"`       // Model sử dụng
	MaxTokens   int     `json:"maxTokens"`   // Giới hạn token sinh ra
	Temperature float64 `json:"temperature"` // Temperature sinh văn bản
}

// AiResponse là phản hồi đã chuẩn hóa từ provider, không phụ thuộc
// schema gốc của từng backend
type AiResponse struct {
	Content       string    `json:"content"`       // Nội dung trả lời
	Tokens        int       `json:"tokens"`        // Tổng token đã dùng
	Cost          int64     `json:"cost"`          // Chi phí quy ra credit
	Model         string    `json:"model"`         // Model đã sinh phản hồi
	Provider      string    `json:"provider"`      // Tên provider
	GeneratedAt   time.Time `json:"generatedAt"`   // Thời điểm sinh phản hồi
	CorrelationID string    `json:"correlationId"` // ID đối chiếu với usage log
}

// ModelInfo mô tả một model khả dụng từ provider
type ModelInfo struct {
	ID      string `json:"id"`      // Định danh model
	OwnedBy string `json:"ownedBy"` // Tổ chức sở hữu
}
