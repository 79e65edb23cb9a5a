package accountsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	billingmodels "wa_agent/internal/api/billing/models"
)

func TestEvaluateActivation(t *testing.T) {
	t.Run("Có subscription - còn slot agent thì cho phép", func(t *testing.T) {
		sub := &billingmodels.Subscription{AccountsLimit: 3}
		result := evaluateActivation(2, sub, 0, 15)

		assert.True(t, result.Allowed)
		assert.True(t, result.HasSubscription)
		assert.Equal(t, int64(2), result.ActiveAgents)
		assert.Equal(t, int64(3), result.AgentsLimit)
		assert.NotEmpty(t, result.Reason)
	})

	t.Run("Có subscription - đã đạt giới hạn thì từ chối", func(t *testing.T) {
		sub := &billingmodels.Subscription{AccountsLimit: 3}
		result := evaluateActivation(3, sub, 100, 15)

		assert.False(t, result.Allowed)
		assert.True(t, result.HasSubscription)
		assert.Equal(t, int64(3), result.ActiveAgents)
		assert.Equal(t, int64(3), result.AgentsLimit)
		assert.Contains(t, result.Reason, "3/3")
	})

	t.Run("Không có subscription - ví 10 nhỏ hơn chi phí tối thiểu 15 thì từ chối", func(t *testing.T) {
		result := evaluateActivation(0, nil, 10, 15)

		assert.False(t, result.Allowed)
		assert.False(t, result.HasSubscription)
		assert.Equal(t, int64(10), result.WalletBalance)
		assert.Contains(t, result.Reason, "10")
		assert.Contains(t, result.Reason, "15")
	})

	t.Run("Không có subscription - ví đủ tiền và chưa có agent thì cho phép", func(t *testing.T) {
		result := evaluateActivation(0, nil, 50, 15)

		assert.True(t, result.Allowed)
		assert.False(t, result.HasSubscription)
		assert.Equal(t, int64(1), result.AgentsLimit)
	})

	t.Run("Không có subscription - đã bật 1 agent thì từ chối dù ví đủ", func(t *testing.T) {
		result := evaluateActivation(1, nil, 1000, 15)

		assert.False(t, result.Allowed)
		assert.Equal(t, int64(1), result.ActiveAgents)
		assert.Equal(t, int64(1), result.AgentsLimit)
	})

	t.Run("Mọi field đều được điền trên cả allow và deny", func(t *testing.T) {
		allow := evaluateActivation(0, nil, 50, 15)
		deny := evaluateActivation(0, nil, 5, 15)

		for _, r := range []*ActivationResult{allow, deny} {
			assert.NotEmpty(t, r.Reason)
			assert.GreaterOrEqual(t, r.AgentsLimit, int64(1))
		}
		assert.Equal(t, int64(50), allow.WalletBalance)
		assert.Equal(t, int64(5), deny.WalletBalance)
	})
}
