package accountdto

// AgentConfigUpdateInput dữ liệu đầu vào khi cập nhật cấu hình AI agent của một account
type AgentConfigUpdateInput struct {
	AgentEnabled         *bool    `json:"agentEnabled,omitempty"`
	AgentModel           string   `json:"agentModel,omitempty"`
	AgentPrompt          string   `json:"agentPrompt,omitempty" validate:"omitempty,no_xss"`
	BusinessContext      string   `json:"businessContext,omitempty" validate:"omitempty,no_xss"`
	TriggerWords         []string `json:"triggerWords,omitempty"`
	IgnoreWords          []string `json:"ignoreWords,omitempty"`
	ResponseDelaySeconds *int     `json:"responseDelaySeconds,omitempty" validate:"omitempty,min=0,max=3600"`
	MaxTokens            *int     `json:"maxTokens,omitempty" validate:"omitempty,min=1,max=32768"`
	Temperature          *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
}

// CanActivateQuery query param cho endpoint kiểm tra quyền kích hoạt agent
type CanActivateQuery struct {
	UserID string `query:"userId" validate:"required,len=24"`
}
