// Package notification gửi cảnh báo billing/quota cho operator qua email.
// Mọi hàm gửi đều best-effort: lỗi SMTP chỉ được log, không trả về cho caller
// vì cảnh báo không được phép chặn pipeline xử lý tin nhắn.
package notification

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"wa_agent/config"
	"wa_agent/internal/logger"
)

// EmailAlerter gửi email cảnh báo qua SMTP
type EmailAlerter struct {
	host     string
	port     int
	username string
	password string
	from     string
	alertTo  string
}

// NewEmailAlerter tạo mới EmailAlerter từ cấu hình server
func NewEmailAlerter(cfg *config.Configuration) *EmailAlerter {
	return &EmailAlerter{
		host:     cfg.SMTP_Host,
		port:     cfg.SMTP_Port,
		username: cfg.SMTP_Username,
		password: cfg.SMTP_Password,
		from:     cfg.SMTP_From,
		alertTo:  cfg.SMTP_AlertTo,
	}
}

// SendLowQuotaAlert cảnh báo hạn mức subscription sắp hết
func (a *EmailAlerter) SendLowQuotaAlert(userID string, remaining, limit int64) {
	subject := fmt.Sprintf("[%s] Hạn mức tin nhắn AI sắp hết - user %s", SeverityMedium, userID)
	body := fmt.Sprintf(
		"<p>User <b>%s</b> chỉ còn <b>%d/%d</b> tin nhắn AI trong gói hiện tại.</p>"+
			"<p>Cân nhắc liên hệ user để gia hạn gói trước khi hệ thống chuyển sang trừ ví.</p>",
		userID, remaining, limit)
	a.send(subject, body)
}

// SendBillingFailureAlert cảnh báo trừ tiền thất bại (hết hạn mức và ví không đủ)
func (a *EmailAlerter) SendBillingFailureAlert(userID string, sessionID string, amount int64) {
	subject := fmt.Sprintf("[%s] Trừ tiền thất bại - user %s", SeverityHigh, userID)
	body := fmt.Sprintf(
		"<p>Không trừ được <b>%d</b> credit cho user <b>%s</b> (phiên <b>%s</b>): "+
			"hết hạn mức subscription và ví không đủ số dư.</p>"+
			"<p>Reply vẫn đã được gửi cho khách; cần thu hồi chi phí hoặc khóa agent.</p>",
		amount, userID, sessionID)
	a.send(subject, body)
}

// send gửi email, nuốt lỗi và log lại
func (a *EmailAlerter) send(subject, htmlBody string) {
	if a.host == "" || a.alertTo == "" {
		logger.GetAppLogger().Debug("📧 [NOTIFICATION] SMTP chưa cấu hình, bỏ qua cảnh báo")
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", a.from)
	msg.SetHeader("To", a.alertTo)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(a.host, a.port, a.username, a.password)
	if err := dialer.DialAndSend(msg); err != nil {
		logger.GetErrorLogger().WithField("subject", subject).
			Errorf("📧 [NOTIFICATION] Gửi email cảnh báo thất bại: %v", err)
	}
}
