package aisvc

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"wa_agent/config"
	accountmodels "wa_agent/internal/api/account/models"
	aimodels "wa_agent/internal/api/ai/models"
	"wa_agent/internal/logger"
)

const providerName = "openai"

// OpenAiProvider gọi backend chat-completions tương thích OpenAI.
// Mọi lỗi provider được nuốt tại tầng này: GenerateResponse trả về nil
// thay vì error, orchestrator xử lý nil như một kết quả phục hồi được.
type OpenAiProvider struct {
	client         *openai.Client
	requestTimeout time.Duration
	costPer1K      float64
	defaultModel   string
}

// NewOpenAiProvider tạo provider từ cấu hình server
func NewOpenAiProvider(cfg *config.Configuration) *OpenAiProvider {
	opts := []option.RequestOption{option.WithBaseURL(cfg.AI_BaseURL)}
	if cfg.AI_APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.AI_APIKey))
	}
	client := openai.NewClient(opts...)
	return &OpenAiProvider{
		client:         &client,
		requestTimeout: time.Duration(cfg.AI_RequestTimeout) * time.Second,
		costPer1K:      cfg.AI_CostPer1KTokens,
		defaultModel:   cfg.AI_DefaultModel,
	}
}

// CanGenerateResponse kiểm tra nhanh trước khi gọi provider:
// agent bật, account chưa bị khóa và có model để dùng
func (p *OpenAiProvider) CanGenerateResponse(account *accountmodels.Account) bool {
	if p.client == nil || account == nil {
		return false
	}
	if !account.AgentEnabled || account.Disabled {
		return false
	}
	return account.AgentModel != "" || p.defaultModel != ""
}

// GenerateResponse gọi provider với timeout giới hạn và chuẩn hóa kết quả.
// Trả về nil cho mọi lỗi (timeout, mạng, response rỗng); handler webhook
// không được phép treo theo provider.
func (p *OpenAiProvider) GenerateResponse(ctx context.Context, account *accountmodels.Account, request *aimodels.AiRequest) *aimodels.AiResponse {
	log := logger.GetLogger("app")

	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(request.Prompt),
		},
		Model:       request.Model,
		MaxTokens:   openai.Int(int64(request.MaxTokens)),
		Temperature: openai.Float(request.Temperature),
	})
	if err != nil {
		log.WithFields(map[string]interface{}{
			"model":     request.Model,
			"sessionId": account.SessionID,
		}).Warnf("🤖 [AI] Provider call failed: %v", err)
		return nil
	}
	if len(resp.Choices) == 0 {
		log.WithField("model", request.Model).Warn("🤖 [AI] Provider returned no choices")
		return nil
	}

	tokens := int(resp.Usage.TotalTokens)
	return &aimodels.AiResponse{
		Content:       resp.Choices[0].Message.Content,
		Tokens:        tokens,
		Cost:          p.CostForTokens(tokens),
		Model:         request.Model,
		Provider:      providerName,
		GeneratedAt:   time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// CostForTokens quy đổi token đã dùng sang credit, làm tròn lên
func (p *OpenAiProvider) CostForTokens(tokens int) int64 {
	if tokens <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(tokens) / 1000.0 * p.costPer1K))
}

// GetAvailableModels liệt kê các model provider đang phục vụ
func (p *OpenAiProvider) GetAvailableModels(ctx context.Context) ([]aimodels.ModelInfo, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	page, err := p.client.Models.List(callCtx)
	if err != nil {
		return nil, err
	}

	models := make([]aimodels.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, aimodels.ModelInfo{
			ID:      m.ID,
			OwnedBy: m.OwnedBy,
		})
	}
	return models, nil
}
