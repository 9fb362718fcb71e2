package types

import "strings"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationCompleted RegistrationStatus = "COMPLETED"
)

// OnboardingStep values are strictly ordered; a user only ever moves forward.
type OnboardingStep string

const (
	StepWaitRegister     OnboardingStep = "WAIT_REGISTER"
	StepAskName          OnboardingStep = "ASK_NAME"
	StepAskCurrency      OnboardingStep = "ASK_CURRENCY"
	StepAskMonthlyBudget OnboardingStep = "ASK_MONTHLY_BUDGET"
	StepAskSavingsTarget OnboardingStep = "ASK_SAVINGS_TARGET"
	StepCompleted        OnboardingStep = "COMPLETED"
)

type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

type TransactionSource string

const (
	SourceText TransactionSource = "TEXT"
	SourceOCR  TransactionSource = "OCR"
)

type PaymentSessionStatus string

const (
	PaymentPending PaymentSessionStatus = "PENDING"
	PaymentPaid    PaymentSessionStatus = "PAID"
)

type SubscriptionStatus string

const (
	SubscriptionInactive SubscriptionStatus = "INACTIVE"
	SubscriptionTrial    SubscriptionStatus = "TRIAL"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
)

type OutboundStatus string

const (
	OutboundPending    OutboundStatus = "PENDING"
	OutboundProcessing OutboundStatus = "PROCESSING"
	OutboundSent       OutboundStatus = "SENT"
	OutboundFailed     OutboundStatus = "FAILED"
)

type AnalysisType string

const (
	AnalysisIntent     AnalysisType = "INTENT"
	AnalysisExtraction AnalysisType = "EXTRACTION"
	AnalysisInsight    AnalysisType = "INSIGHT"
)

type ReportPeriod string

const (
	PeriodDaily   ReportPeriod = "daily"
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
)

// ParseReportPeriod falls back to monthly for anything it does not recognize.
func ParseReportPeriod(raw string) ReportPeriod {
	p := ReportPeriod(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p
	default:
		return PeriodMonthly
	}
}
