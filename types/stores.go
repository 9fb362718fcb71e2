package types

import (
	"context"
	"time"
)

type UserStore interface {
	FindOrCreateUserByWaNumber(ctx context.Context, waNumber string) (user *User, isNew bool, err error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	SetOnboardingName(ctx context.Context, userID, name string, next OnboardingStep) error
	SetOnboardingCurrency(ctx context.Context, userID, currency string, next OnboardingStep) error
	SetOnboardingMonthlyBudget(ctx context.Context, userID string, amount float64, next OnboardingStep) error
	AdvanceOnboardingStep(ctx context.Context, userID string, next OnboardingStep) error
	// CompleteRegistration marks the user COMPLETED, stamps the completion
	// time and upserts the savings-goal target in one transaction.
	CompleteRegistration(ctx context.Context, userID string, savingsTarget float64) error
}

type MessageStore interface {
	CreateMessageLog(ctx context.Context, log *MessageLog) (*MessageLog, error)
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *Transaction) (*Transaction, error)
	ListTransactionsInRange(ctx context.Context, userID string, start, end time.Time) ([]Transaction, error)
	SumTransactionsByType(ctx context.Context, userID string, txType TransactionType) (float64, error)
	SumCategoryExpensesInRange(ctx context.Context, userID, category string, start, end time.Time) (float64, error)
}

type BudgetStore interface {
	UpsertBudget(ctx context.Context, userID, category string, monthlyLimit float64) (*Budget, error)
	GetBudget(ctx context.Context, userID, category string) (*Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]Budget, error)
}

type GoalStore interface {
	UpsertGoalProgress(ctx context.Context, userID string, progress float64) (*SavingsGoal, error)
	UpsertGoalTarget(ctx context.Context, userID string, target, progress float64) (*SavingsGoal, error)
}

type PaymentStore interface {
	// CreateOrGetPendingPaymentSession never creates a second concurrent
	// PENDING session for one user.
	CreateOrGetPendingPaymentSession(ctx context.Context, userID string, amount float64) (*PaymentSession, error)
	GetPaymentSessionByToken(ctx context.Context, token string) (*PaymentSession, *User, error)
	// ConfirmPaymentByToken flips PENDING->PAID, activates the user's latest
	// subscription and enqueues the confirmation outbound message in one
	// transaction. Confirming an already-PAID session is a no-op success.
	ConfirmPaymentByToken(ctx context.Context, token string) (*PaymentSession, error)
}

type SubscriptionStore interface {
	GetLatestSubscription(ctx context.Context, userID string) (*Subscription, error)
}

type OutboundStore interface {
	QueueOutboundMessage(ctx context.Context, userID, waNumber, messageText string) (*OutboundMessage, error)
	// ClaimPendingOutboundMessages atomically selects up to limit oldest
	// PENDING rows and flips them to PROCESSING. Two concurrent claims never
	// return overlapping rows.
	ClaimPendingOutboundMessages(ctx context.Context, limit int) ([]OutboundMessage, error)
	AckOutboundMessage(ctx context.Context, id string, status OutboundStatus, errorMessage string) error
	RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) (int, error)
}

type AILogStore interface {
	CreateAIAnalysisLog(ctx context.Context, userID, messageID string, analysisType AnalysisType, payload any) error
}

type HeartbeatStore interface {
	UpsertHeartbeat(ctx context.Context, serviceName string) error
	// GetHeartbeat returns (nil, nil) for a service that has never reported;
	// errors mean the read itself failed.
	GetHeartbeat(ctx context.Context, serviceName string) (*Heartbeat, error)
}
