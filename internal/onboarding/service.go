package onboarding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/internal/payment"
	"github.com/dimasprakoso/catatduit/types"
)

type Service struct {
	users    types.UserStore
	payments *payment.Service
	log      zerolog.Logger
}

func NewService(users types.UserStore, payments *payment.Service, log zerolog.Logger) *Service {
	return &Service{users: users, payments: payments, log: log}
}

// Handle advances the user's onboarding with one inbound message and returns
// the reply text.
func (s *Service) Handle(ctx context.Context, user *types.User, input string, isImage bool) (string, error) {
	outcome := Advance(user.OnboardingStep, input, isImage)

	switch outcome.Action {
	case ActionNone:
		return outcome.Reply, nil

	case ActionStart:
		if err := s.users.AdvanceOnboardingStep(ctx, user.ID, types.StepAskName); err != nil {
			return "", fmt.Errorf("start onboarding: %w", err)
		}
		return outcome.Reply, nil

	case ActionSetName:
		if err := s.users.SetOnboardingName(ctx, user.ID, outcome.Name, types.StepAskCurrency); err != nil {
			return "", fmt.Errorf("save onboarding name: %w", err)
		}
		return outcome.Reply, nil

	case ActionSetCurrency:
		if err := s.users.SetOnboardingCurrency(ctx, user.ID, outcome.Currency, types.StepAskMonthlyBudget); err != nil {
			return "", fmt.Errorf("save onboarding currency: %w", err)
		}
		return outcome.Reply, nil

	case ActionSetMonthlyBudget:
		if err := s.users.SetOnboardingMonthlyBudget(ctx, user.ID, outcome.Amount, types.StepAskSavingsTarget); err != nil {
			return "", fmt.Errorf("save monthly budget: %w", err)
		}
		return outcome.Reply, nil

	case ActionComplete:
		if err := s.users.CompleteRegistration(ctx, user.ID, outcome.Amount); err != nil {
			return "", fmt.Errorf("complete registration: %w", err)
		}
		session, link, err := s.payments.EnsurePendingSession(ctx, user.ID)
		if err != nil {
			return "", fmt.Errorf("create payment session: %w", err)
		}
		currency := user.Currency
		if currency == "" {
			currency = "IDR"
		}
		s.log.Info().Str("user_id", user.ID).Str("token", session.Token).Msg("onboarding completed, payment session ready")
		return messages.OnboardingCompleted(session.Amount, currency, link), nil

	case ActionPendingPayment:
		_, link, err := s.payments.EnsurePendingSession(ctx, user.ID)
		if err != nil {
			return "", fmt.Errorf("load pending payment session: %w", err)
		}
		return messages.OnboardingAwaitingPayment(link), nil
	}

	return outcome.Reply, nil
}
