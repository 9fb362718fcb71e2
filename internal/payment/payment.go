// Package payment manages dummy payment sessions and their public links.
package payment

import (
	"context"
	"strings"

	"github.com/dimasprakoso/catatduit/types"
)

type Service struct {
	store   types.PaymentStore
	baseURL string
	amount  float64
}

func NewService(store types.PaymentStore, webBaseURL string, dummyAmount float64) *Service {
	return &Service{
		store:   store,
		baseURL: strings.TrimRight(webBaseURL, "/"),
		amount:  dummyAmount,
	}
}

// Link builds the public payment page URL for a session token.
func (s *Service) Link(token string) string {
	return s.baseURL + "/pay/" + token
}

// EnsurePendingSession returns the user's open PENDING session, creating one
// with the dummy amount when none exists, plus its payment link.
func (s *Service) EnsurePendingSession(ctx context.Context, userID string) (*types.PaymentSession, string, error) {
	session, err := s.store.CreateOrGetPendingPaymentSession(ctx, userID, s.amount)
	if err != nil {
		return nil, "", err
	}
	return session, s.Link(session.Token), nil
}

// Confirm marks the session PAID and activates the subscription. Repeated
// confirmations of a PAID session succeed without side effects.
func (s *Service) Confirm(ctx context.Context, token string) (*types.PaymentSession, error) {
	return s.store.ConfirmPaymentByToken(ctx, token)
}

// SessionByToken loads a session and its owner for the public status page.
func (s *Service) SessionByToken(ctx context.Context, token string) (*types.PaymentSession, *types.User, error) {
	return s.store.GetPaymentSessionByToken(ctx, token)
}
