package types

import "time"

type User struct {
	ID                    string
	WaNumber              string
	Name                  string
	Currency              string
	MonthlyBudget         *float64
	RegistrationStatus    RegistrationStatus
	OnboardingStep        OnboardingStep
	OnboardingCompletedAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type MessageLog struct {
	ID               string
	UserID           string
	MessageType      MessageType
	ContentOrCaption string
	MediaRef         string
	SentAt           time.Time
	CreatedAt        time.Time
}

type Transaction struct {
	ID         string
	UserID     string
	Type       TransactionType
	Amount     float64
	Category   string
	Merchant   string
	Note       string
	OccurredAt time.Time
	Source     TransactionSource
	RawText    string
	CreatedAt  time.Time
}

type Budget struct {
	ID           string
	UserID       string
	Category     string
	MonthlyLimit float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SavingsGoal struct {
	ID              string
	UserID          string
	TargetAmount    float64
	CurrentProgress float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type PaymentSession struct {
	ID        string
	UserID    string
	Token     string
	Amount    float64
	Status    PaymentSessionStatus
	PaidAt    *time.Time
	CreatedAt time.Time
}

type Subscription struct {
	ID        string
	UserID    string
	Status    SubscriptionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OutboundMessage struct {
	ID           string
	UserID       string
	WaNumber     string
	MessageText  string
	Status       OutboundStatus
	ErrorMessage string
	SentAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AIAnalysisLog struct {
	ID           string
	UserID       string
	MessageID    string
	AnalysisType AnalysisType
	PayloadJSON  []byte
	CreatedAt    time.Time
}

type Heartbeat struct {
	ServiceName string
	LastSeenAt  time.Time
}
