package utility

import "strings"

// NormalizePhoneFromJID trích số điện thoại từ JID của WhatsApp.
// Ví dụ: "237691234567@c.us" -> "237691234567".
func NormalizePhoneFromJID(jid string) string {
	if idx := strings.Index(jid, "@"); idx >= 0 {
		return jid[:idx]
	}
	return jid
}

// IsGroupJID kiểm tra JID có phải là group chat không
func IsGroupJID(jid string) bool {
	return strings.HasSuffix(jid, "@g.us")
}
