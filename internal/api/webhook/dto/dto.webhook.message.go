package webhookdto

// InboundMessage là phần message trong payload từ WhatsApp bridge
type InboundMessage struct {
	ID          string `json:"id" validate:"required"`
	From        string `json:"from" validate:"required"`
	Body        string `json:"body"`
	Timestamp   int64  `json:"timestamp"`
	Type        string `json:"type"`
	IsGroup     bool   `json:"isGroup"`
	ContactName string `json:"contactName,omitempty"`
	PushName    string `json:"pushName,omitempty"`
}

// IncomingMessageRequest là request body webhook tin nhắn đến từ bridge
type IncomingMessageRequest struct {
	Event       string         `json:"event"`
	SessionID   string         `json:"session_id" validate:"required"`
	SessionName string         `json:"session_name"`
	Message     InboundMessage `json:"message" validate:"required"`
}

// IncomingMessageResponse là JSON ack trả về cho bridge, chứa reply cần relay
type IncomingMessageResponse struct {
	Success   bool   `json:"success"`
	Processed bool   `json:"processed"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SessionStatusRequest là webhook cập nhật trạng thái kết nối phiên
type SessionStatusRequest struct {
	SessionID   string `json:"session_id" validate:"required"`
	Status      string `json:"status" validate:"required"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// QRScanRequest là webhook khi user quét QR tạo phiên mới
type QRScanRequest struct {
	UserID      string `json:"user_id" validate:"required,len=24"`
	SessionID   string `json:"session_id" validate:"required"`
	SessionName string `json:"session_name" validate:"required"`
}
