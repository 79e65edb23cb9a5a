package webhookdto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wa_agent/internal/global"
)

func validIncomingMessageRequest() IncomingMessageRequest {
	return IncomingMessageRequest{
		Event:     "message",
		SessionID: "session-1",
		Message: InboundMessage{
			ID:        "msg-001",
			From:      "84901234567@c.us",
			Body:      "Bonjour",
			Timestamp: 1700000000,
			Type:      "text",
		},
	}
}

func TestIncomingMessageRequest_Validation(t *testing.T) {
	global.InitValidator()

	t.Run("Payload đầy đủ thì hợp lệ", func(t *testing.T) {
		req := validIncomingMessageRequest()
		assert.NoError(t, global.Validate.Struct(&req))
	})

	t.Run("Thiếu message.id thì bị từ chối", func(t *testing.T) {
		// externalId rỗng sẽ phá dedup: mọi tin rỗng id sau đó trong cùng
		// hội thoại đều đụng unique index và bị coi là redelivery
		req := validIncomingMessageRequest()
		req.Message.ID = ""
		assert.Error(t, global.Validate.Struct(&req))
	})

	t.Run("Thiếu session_id thì bị từ chối", func(t *testing.T) {
		req := validIncomingMessageRequest()
		req.SessionID = ""
		assert.Error(t, global.Validate.Struct(&req))
	})

	t.Run("Thiếu message.from thì bị từ chối", func(t *testing.T) {
		req := validIncomingMessageRequest()
		req.Message.From = ""
		assert.Error(t, global.Validate.Struct(&req))
	})
}
