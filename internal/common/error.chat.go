package common

import (
	"errors"
	"fmt"
)

// NonTextMessageError là lỗi khi tin nhắn inbound không phải dạng text (image, audio, document, ...).
// Lỗi này mang theo loại tin nhắn bị từ chối để handler trả lời người dùng bằng câu xin lỗi cấu hình sẵn.
// Tin nhắn bị từ chối KHÔNG được lưu vào conversation.
type NonTextMessageError struct {
	MessageType string // Loại tin nhắn bị từ chối (image, audio, video, document, sticker, ...)
}

// Error trả về message của lỗi
func (e *NonTextMessageError) Error() string {
	return fmt.Sprintf("Tin nhắn dạng %q không được hỗ trợ, AI agent chỉ xử lý tin nhắn text", e.MessageType)
}

// StatusCode trả về HTTP status tương ứng (422)
func (e *NonTextMessageError) StatusCode() int {
	return StatusUnprocessableEntity
}

// NewNonTextMessageError tạo lỗi tin nhắn không phải text với loại tin nhắn bị từ chối.
func NewNonTextMessageError(messageType string) error {
	return &NonTextMessageError{MessageType: messageType}
}

// AsNonTextMessage kiểm tra err có phải NonTextMessageError không, trả về lỗi đã ép kiểu nếu đúng.
func AsNonTextMessage(err error) (*NonTextMessageError, bool) {
	var nte *NonTextMessageError
	if errors.As(err, &nte) {
		return nte, true
	}
	return nil, false
}
