package aisvc

import (
	"strings"

	accountmodels "wa_agent/internal/api/account/models"
	aimodels "wa_agent/internal/api/ai/models"
	chatmodels "wa_agent/internal/api/chat/models"
	"wa_agent/internal/global"
)

// Các khối văn bản cố định của prompt. Thứ tự ghép là cố định:
// persona → quy tắc giọng điệu → bối cảnh doanh nghiệp → lịch sử → tin mới.
// Giữ persona đứng trước để model bám vai trước khi đọc dữ liệu tự do.
const (
	DefaultSystemPrompt = "Bạn là trợ lý ảo thân thiện, hỗ trợ khách hàng qua WhatsApp. Trả lời ngắn gọn, lịch sự và hữu ích."

	ToneRules = "Quy tắc trả lời: giữ giọng điệu chuyên nghiệp và nhất quán trong suốt hội thoại. " +
		"Không tự bịa ra thông tin liên hệ, địa chỉ, giá cả hay cam kết không có trong thông tin được cung cấp."

	BusinessContextOpen  = "=== THÔNG TIN DOANH NGHIỆP ==="
	BusinessContextClose = "=== HẾT THÔNG TIN DOANH NGHIỆP ==="

	HistoryHeader = "Lịch sử hội thoại gần đây:"

	NewMessageDirective = "Tin nhắn mới từ khách hàng:"

	RoleLabelCustomer  = "Khách hàng"
	RoleLabelAssistant = "Trợ lý"
)

// BuildAiRequest lắp ráp prompt hoàn chỉnh từ cấu hình account, lịch sử hội thoại
// và tin nhắn mới, kèm tham số sinh văn bản. Không chứa logic nghiệp vụ nào khác.
func BuildAiRequest(account *accountmodels.Account, history []chatmodels.Message, userMessage string) *aimodels.AiRequest {
	var b strings.Builder

	basePrompt := account.AgentPrompt
	if basePrompt == "" {
		basePrompt = DefaultSystemPrompt
	}
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	b.WriteString(ToneRules)

	if account.BusinessContext != "" {
		b.WriteString("\n\n")
		b.WriteString(BusinessContextOpen)
		b.WriteString("\n")
		b.WriteString(account.BusinessContext)
		b.WriteString("\n")
		b.WriteString(BusinessContextClose)
	}

	if len(history) > 0 {
		b.WriteString("\n\n")
		b.WriteString(HistoryHeader)
		for _, message := range history {
			b.WriteString("\n")
			if message.Direction == chatmodels.MessageDirectionOut {
				b.WriteString(RoleLabelAssistant)
			} else {
				b.WriteString(RoleLabelCustomer)
			}
			b.WriteString(": ")
			b.WriteString(message.Body)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(NewMessageDirective)
	b.WriteString("\n")
	b.WriteString(userMessage)

	return &aimodels.AiRequest{
		Prompt:      b.String(),
		Model:       resolveModel(account),
		MaxTokens:   resolveMaxTokens(account),
		Temperature: resolveTemperature(account),
	}
}

func resolveModel(account *accountmodels.Account) string {
	if account.AgentModel != "" {
		return account.AgentModel
	}
	if global.ServerConfig != nil {
		return global.ServerConfig.AI_DefaultModel
	}
	return ""
}

func resolveMaxTokens(account *accountmodels.Account) int {
	if account.MaxTokens > 0 {
		return account.MaxTokens
	}
	return 512
}

func resolveTemperature(account *accountmodels.Account) float64 {
	if account.Temperature > 0 {
		return account.Temperature
	}
	return 0.7
}
