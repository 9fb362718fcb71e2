// Package onboarding drives the registration question flow for new users.
// The state transition itself is a pure function; Service applies the
// resulting writes.
package onboarding

import (
	"strings"

	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/types"
)

// Action names the write an Outcome requires. ActionNone outcomes only reply.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionSetName
	ActionSetCurrency
	ActionSetMonthlyBudget
	ActionComplete
	// ActionPendingPayment covers the odd state where the step already reads
	// COMPLETED but the registration flag lagged behind; the service answers
	// with the open payment link.
	ActionPendingPayment
)

type Outcome struct {
	Action   Action
	Reply    string
	Name     string
	Currency string
	Amount   float64
}

func isRegisterKeyword(input string) bool {
	v := strings.ToLower(strings.TrimSpace(input))
	return v == "register" || v == "/register"
}

func parseDigits(input string) (float64, bool) {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	var value float64
	for _, r := range b.String() {
		value = value*10 + float64(r-'0')
	}
	return value, value > 0
}

// Advance computes the next onboarding transition without touching storage.
func Advance(step types.OnboardingStep, input string, isImage bool) Outcome {
	if isImage {
		return Outcome{Reply: messages.OnboardingTextOnly(step)}
	}

	trimmed := strings.TrimSpace(input)

	if step == types.StepWaitRegister {
		if isRegisterKeyword(trimmed) {
			return Outcome{Action: ActionStart, Reply: messages.OnboardingStarted()}
		}
		return Outcome{Reply: messages.RegisterPrompt}
	}

	if trimmed == "" {
		return Outcome{Reply: messages.OnboardingQuestion(step)}
	}

	// Commands stay locked until the flow finishes; `/register` mid-flow just
	// repeats the current question.
	if strings.HasPrefix(trimmed, "/") {
		if isRegisterKeyword(trimmed) {
			return Outcome{Reply: messages.OnboardingQuestion(step)}
		}
		return Outcome{Reply: messages.OnboardingCommandLocked(step)}
	}

	switch step {
	case types.StepAskName:
		if len([]rune(trimmed)) < 2 {
			return Outcome{Reply: messages.OnboardingNameTooShort()}
		}
		return Outcome{
			Action: ActionSetName,
			Name:   trimmed,
			Reply:  messages.OnboardingQuestion(types.StepAskCurrency),
		}

	case types.StepAskCurrency:
		currency := strings.ToUpper(trimmed)
		if currency != "IDR" && currency != "USD" {
			return Outcome{Reply: messages.OnboardingInvalidCurrency()}
		}
		return Outcome{
			Action:   ActionSetCurrency,
			Currency: currency,
			Reply:    messages.OnboardingQuestion(types.StepAskMonthlyBudget),
		}

	case types.StepAskMonthlyBudget:
		amount, ok := parseDigits(trimmed)
		if !ok {
			return Outcome{Reply: messages.OnboardingInvalidMonthlyBudget()}
		}
		return Outcome{
			Action: ActionSetMonthlyBudget,
			Amount: amount,
			Reply:  messages.OnboardingQuestion(types.StepAskSavingsTarget),
		}

	case types.StepAskSavingsTarget:
		amount, ok := parseDigits(trimmed)
		if !ok {
			return Outcome{Reply: messages.OnboardingInvalidSavingsTarget()}
		}
		// The completion reply needs the payment link, which only the service
		// can mint.
		return Outcome{Action: ActionComplete, Amount: amount}
	}

	return Outcome{Action: ActionPendingPayment}
}
