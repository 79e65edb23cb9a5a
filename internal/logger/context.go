package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// WithRequest tạo log entry với thông tin request từ fiber context
func WithRequest(c fiber.Ctx) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"ip":         c.IP(),
		"request_id": c.GetRespHeader("X-Request-ID"),
	})
}

// WithFields tạo log entry với các fields tùy chỉnh trên app logger
func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetAppLogger().WithFields(fields)
}

// WithSession tạo log entry gắn với một phiên WhatsApp.
// Dùng cho các log trong pipeline xử lý tin nhắn.
func WithSession(sessionID string) *logrus.Entry {
	return GetAppLogger().WithField("session_id", sessionID)
}

// WithAudit tạo log entry trên audit logger với action cụ thể
func WithAudit(action string, fields logrus.Fields) *logrus.Entry {
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["action"] = action
	return GetAuditLogger().WithFields(fields)
}
