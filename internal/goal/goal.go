// Package goal tracks savings-goal progress derived from lifetime net
// cashflow.
package goal

import (
	"context"

	"github.com/dimasprakoso/catatduit/types"
)

type Status struct {
	Target    float64
	Progress  float64
	Remaining float64
	Percent   float64
}

type Service struct {
	goals        types.GoalStore
	transactions types.TransactionStore
}

func NewService(goals types.GoalStore, transactions types.TransactionStore) *Service {
	return &Service{goals: goals, transactions: transactions}
}

func (s *Service) netSavings(ctx context.Context, userID string) (float64, error) {
	income, err := s.transactions.SumTransactionsByType(ctx, userID, types.TransactionIncome)
	if err != nil {
		return 0, err
	}
	expense, err := s.transactions.SumTransactionsByType(ctx, userID, types.TransactionExpense)
	if err != nil {
		return 0, err
	}
	net := income - expense
	if net < 0 {
		net = 0
	}
	return net, nil
}

// Refresh recomputes progress from transaction sums and persists it.
func (s *Service) Refresh(ctx context.Context, userID string) (*types.SavingsGoal, error) {
	net, err := s.netSavings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.goals.UpsertGoalProgress(ctx, userID, net)
}

// SetTarget stores a new target together with the current progress.
func (s *Service) SetTarget(ctx context.Context, userID string, target float64) (*types.SavingsGoal, error) {
	net, err := s.netSavings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.goals.UpsertGoalTarget(ctx, userID, target, net)
}

// GetStatus returns a fresh status snapshot, or nil when no target is set.
func (s *Service) GetStatus(ctx context.Context, userID string) (*Status, error) {
	g, err := s.Refresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	if g == nil || g.TargetAmount <= 0 {
		return nil, nil
	}
	st := buildStatus(g.TargetAmount, g.CurrentProgress)
	return &st, nil
}

// Snapshot always returns a status, zero-valued when no target exists yet.
func (s *Service) Snapshot(ctx context.Context, userID string) (Status, error) {
	g, err := s.Refresh(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if g == nil {
		return Status{}, nil
	}
	return buildStatus(g.TargetAmount, g.CurrentProgress), nil
}

func buildStatus(target, progress float64) Status {
	if target < 0 {
		target = 0
	}
	if progress < 0 {
		progress = 0
	}
	remaining := target - progress
	if remaining < 0 {
		remaining = 0
	}
	var percent float64
	if target > 0 {
		percent = progress / target * 100
		if percent > 100 {
			percent = 100
		}
	}
	return Status{Target: target, Progress: progress, Remaining: remaining, Percent: percent}
}
