package accountsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	billingmodels "wa_agent/internal/api/billing/models"
)

// ActivationResult là kết quả kiểm tra quyền kích hoạt AI agent.
// Mọi field được điền trên cả đường allow và deny để caller render UI
// giống nhau bất kể kết quả.
type ActivationResult struct {
	Allowed         bool   `json:"allowed"`
	Reason          string `json:"reason"`
	ActiveAgents    int64  `json:"activeAgents"`
	AgentsLimit     int64  `json:"agentsLimit"`
	HasSubscription bool   `json:"hasSubscription"`
	WalletBalance   int64  `json:"walletBalance"`
}

// Collaborator của gate, inject để test với fakes.
type subscriptionFinder interface {
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Subscription, error)
}

type walletFinder interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*billingmodels.Wallet, error)
}

type agentCounter interface {
	CountEnabledAgents(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// AccountGate quyết định một user có được bật thêm AI agent hay không,
// dựa trên subscription đang hiệu lực và số dư ví.
type AccountGate struct {
	accounts      agentCounter
	subscriptions subscriptionFinder
	wallets       walletFinder

	minMessageCost int64 // Số dư tối thiểu để chạy agent không có subscription
}

// NewAccountGate tạo mới AccountGate
func NewAccountGate(accounts agentCounter, subscriptions subscriptionFinder, wallets walletFinder, minMessageCost int64) *AccountGate {
	return &AccountGate{
		accounts:       accounts,
		subscriptions:  subscriptions,
		wallets:        wallets,
		minMessageCost: minMessageCost,
	}
}

// CanActivateAgent kiểm tra user có được kích hoạt thêm một AI agent không.
// Load dữ liệu rồi ủy quyền cho evaluateActivation (pure function).
func (g *AccountGate) CanActivateAgent(ctx context.Context, userID primitive.ObjectID) (*ActivationResult, error) {
	activeAgents, err := g.accounts.CountEnabledAgents(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub, err := g.subscriptions.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var balance int64
	wallet, err := g.wallets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		balance = wallet.Balance
	}

	return evaluateActivation(activeAgents, sub, balance, g.minMessageCost), nil
}

// evaluateActivation là logic quyết định thuần túy của Account Gate:
//   - Có subscription hiệu lực: cho phép khi số agent đang bật < accountsLimit.
//   - Không có subscription: yêu cầu số dư ví >= chi phí tối thiểu một tin AI,
//     và tối đa 1 agent đồng thời.
func evaluateActivation(activeAgents int64, sub *billingmodels.Subscription, walletBalance int64, minMessageCost int64) *ActivationResult {
	if sub != nil {
		result := &ActivationResult{
			ActiveAgents:    activeAgents,
			AgentsLimit:     sub.AccountsLimit,
			HasSubscription: true,
			WalletBalance:   walletBalance,
		}
		if activeAgents < sub.AccountsLimit {
			result.Allowed = true
			result.Reason = fmt.Sprintf("Được phép kích hoạt: đang dùng %d/%d agent của gói", activeAgents, sub.AccountsLimit)
		} else {
			result.Allowed = false
			result.Reason = fmt.Sprintf("Đã đạt giới hạn agent của gói: %d/%d", activeAgents, sub.AccountsLimit)
		}
		return result
	}

	// Không có subscription: chạy bằng ví, giới hạn 1 agent
	const noSubAgentsLimit = 1
	result := &ActivationResult{
		ActiveAgents:    activeAgents,
		AgentsLimit:     noSubAgentsLimit,
		HasSubscription: false,
		WalletBalance:   walletBalance,
	}

	if walletBalance < minMessageCost {
		result.Allowed = false
		result.Reason = fmt.Sprintf("Số dư ví không đủ: %d < %d (chi phí tối thiểu một tin AI)", walletBalance, minMessageCost)
		return result
	}

	if activeAgents >= noSubAgentsLimit {
		result.Allowed = false
		result.Reason = fmt.Sprintf("Không có gói cước chỉ được bật tối đa %d agent (đang bật %d)", noSubAgentsLimit, activeAgents)
		return result
	}

	result.Allowed = true
	result.Reason = fmt.Sprintf("Được phép kích hoạt: số dư ví %d đủ cho chi phí tối thiểu %d", walletBalance, minMessageCost)
	return result
}
