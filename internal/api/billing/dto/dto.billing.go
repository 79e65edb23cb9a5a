// Package billingdto chứa các cấu trúc dữ liệu vào/ra cho domain Billing.
package billingdto

// SubscriptionGrantInput dữ liệu đầu vào khi cấp subscription cho user từ một gói cước
type SubscriptionGrantInput struct {
	UserID    string `json:"userId" validate:"required,len=24"`
	PackageID string `json:"packageId" validate:"required,len=24"`
}

// WalletTopupInput dữ liệu đầu vào khi nạp tiền vào ví
type WalletTopupInput struct {
	UserID string `json:"userId" validate:"required,len=24"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}
