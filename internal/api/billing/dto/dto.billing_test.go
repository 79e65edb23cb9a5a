package billingdto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wa_agent/internal/global"
)

func TestSubscriptionGrantInput_Validation(t *testing.T) {
	global.InitValidator()

	t.Run("Đủ userId và packageId thì hợp lệ", func(t *testing.T) {
		input := SubscriptionGrantInput{
			UserID:    "64f000000000000000000001",
			PackageID: "64f000000000000000000002",
		}
		assert.NoError(t, global.Validate.Struct(&input))
	})

	t.Run("packageId sai độ dài thì bị từ chối", func(t *testing.T) {
		input := SubscriptionGrantInput{
			UserID:    "64f000000000000000000001",
			PackageID: "abc",
		}
		assert.Error(t, global.Validate.Struct(&input))
	})
}

func TestWalletTopupInput_Validation(t *testing.T) {
	global.InitValidator()

	t.Run("Số tiền dương thì hợp lệ", func(t *testing.T) {
		input := WalletTopupInput{UserID: "64f000000000000000000001", Amount: 50000}
		assert.NoError(t, global.Validate.Struct(&input))
	})

	t.Run("Số tiền âm thì bị từ chối", func(t *testing.T) {
		input := WalletTopupInput{UserID: "64f000000000000000000001", Amount: -1}
		assert.Error(t, global.Validate.Struct(&input))
	})
}
