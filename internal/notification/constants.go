package notification

// Severity constants - Mức độ nghiêm trọng
const (
	SeverityCritical = "critical" // Cực kỳ nghiêm trọng - xử lý ngay
	SeverityHigh     = "high"     // Cao - xử lý sớm
	SeverityMedium   = "medium"   // Trung bình - xử lý trong giờ làm việc
	SeverityInfo     = "info"     // Thông tin - chỉ log/ghi nhận
)
