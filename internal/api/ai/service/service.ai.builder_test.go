package aisvc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountmodels "wa_agent/internal/api/account/models"
	chatmodels "wa_agent/internal/api/chat/models"
)

func TestBuildAiRequest_ThuTuPromptCoDinh(t *testing.T) {
	account := &accountmodels.Account{
		AgentPrompt:     "Bạn là trợ lý của tiệm bánh Hương Lan.",
		BusinessContext: "Giờ mở cửa: 7h-21h. Địa chỉ: 12 Lê Lợi.",
		AgentModel:      "gpt-4o-mini",
	}
	history := []chatmodels.Message{
		{Direction: chatmodels.MessageDirectionIn, Body: "Shop còn bánh kem không?"},
		{Direction: chatmodels.MessageDirectionOut, Body: "Dạ còn ạ, shop còn bánh kem dâu và socola."},
	}

	request := BuildAiRequest(account, history, "Cho mình đặt một bánh socola nhé")
	require.NotNil(t, request)

	// Prompt phải được ghép đúng từng byte theo thứ tự cố định
	expected := "Bạn là trợ lý của tiệm bánh Hương Lan." +
		"\n\n" + ToneRules +
		"\n\n" + BusinessContextOpen +
		"\n" + "Giờ mở cửa: 7h-21h. Địa chỉ: 12 Lê Lợi." +
		"\n" + BusinessContextClose +
		"\n\n" + HistoryHeader +
		"\n" + RoleLabelCustomer + ": Shop còn bánh kem không?" +
		"\n" + RoleLabelAssistant + ": Dạ còn ạ, shop còn bánh kem dâu và socola." +
		"\n\n" + NewMessageDirective +
		"\n" + "Cho mình đặt một bánh socola nhé"
	assert.Equal(t, expected, request.Prompt)

	// Persona phải đứng trước mọi khối dữ liệu tự do
	assert.Less(t,
		strings.Index(request.Prompt, "tiệm bánh Hương Lan"),
		strings.Index(request.Prompt, BusinessContextOpen))
	assert.Less(t,
		strings.Index(request.Prompt, BusinessContextOpen),
		strings.Index(request.Prompt, HistoryHeader))
	assert.Less(t,
		strings.Index(request.Prompt, HistoryHeader),
		strings.Index(request.Prompt, NewMessageDirective))
}

func TestBuildAiRequest_PromptMacDinhKhiChuaCauHinh(t *testing.T) {
	account := &accountmodels.Account{AgentModel: "gpt-4o-mini"}

	request := BuildAiRequest(account, nil, "Xin chào")

	assert.True(t, strings.HasPrefix(request.Prompt, DefaultSystemPrompt))
	// Không có bối cảnh doanh nghiệp thì không chèn khối delimiter
	assert.NotContains(t, request.Prompt, BusinessContextOpen)
	// Không có lịch sử thì không chèn header lịch sử
	assert.NotContains(t, request.Prompt, HistoryHeader)
	assert.Contains(t, request.Prompt, NewMessageDirective+"\nXin chào")
}

func TestBuildAiRequest_ThamSoSinhVanBan(t *testing.T) {
	account := &accountmodels.Account{
		AgentModel:  "gpt-4o",
		MaxTokens:   256,
		Temperature: 0.3,
	}

	request := BuildAiRequest(account, nil, "Hi")

	assert.Equal(t, "gpt-4o", request.Model)
	assert.Equal(t, 256, request.MaxTokens)
	assert.InDelta(t, 0.3, request.Temperature, 1e-9)
}

func TestBuildAiRequest_ThamSoMacDinh(t *testing.T) {
	account := &accountmodels.Account{AgentModel: "gpt-4o-mini"}

	request := BuildAiRequest(account, nil, "Hi")

	assert.Equal(t, 512, request.MaxTokens)
	assert.InDelta(t, 0.7, request.Temperature, 1e-9)
}
