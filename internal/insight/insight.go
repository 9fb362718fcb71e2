// Package insight produces the month-to-date financial analysis reply. Rule
// based lines always come first; AI elaboration is appended only when the
// model call succeeds.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/types"
)

// TextGenerator elaborates a numeric summary into natural language.
type TextGenerator interface {
	GenerateInsightText(ctx context.Context, summary string) (string, error)
}

type Service struct {
	transactions types.TransactionStore
	ai           TextGenerator
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(transactions types.TransactionStore, ai TextGenerator, log zerolog.Logger) *Service {
	return &Service{transactions: transactions, ai: ai, log: log, now: time.Now}
}

// Build assembles the insight text for the user's current calendar month.
func (s *Service) Build(ctx context.Context, userID string) (string, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	txs, err := s.transactions.ListTransactionsInRange(ctx, userID, start, now)
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return messages.InsightNoTransactions(), nil
	}

	var income, expense float64
	totals := map[string]float64{}
	var order []string
	for _, tx := range txs {
		if tx.Type == types.TransactionIncome {
			income += tx.Amount
			continue
		}
		expense += tx.Amount
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.Amount
	}
	sort.SliceStable(order, func(i, j int) bool { return totals[order[i]] > totals[order[j]] })

	balance := income - expense
	var rules []string
	if expense > income {
		rules = append(rules, "Pengeluaran bulan ini lebih besar dari pemasukan.")
	} else {
		rules = append(rules, "Arus kas masih positif bulan ini.")
	}

	topCategory := "N/A"
	if len(order) > 0 {
		topCategory = order[0]
		rules = append(rules, fmt.Sprintf("Kategori pengeluaran tertinggi: %s (%.2f).", topCategory, totals[topCategory]))
	}
	if income > 0 {
		rules = append(rules, fmt.Sprintf("Perkiraan savings rate: %.1f%%.", balance/income*100))
	}
	ruleText := strings.Join(rules, " ")

	if s.ai == nil {
		return ruleText, nil
	}

	summary := fmt.Sprintf("income=%.2f, expense=%.2f, balance=%.2f, topCategory=%s",
		income, expense, balance, topCategory)
	aiText, err := s.ai.GenerateInsightText(ctx, summary)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("insight elaboration failed, returning rules only")
		return ruleText, nil
	}
	return strings.TrimSpace(ruleText + " " + aiText), nil
}
