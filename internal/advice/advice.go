// Package advice answers open financial questions with a three-part rule
// based text (Deskriptif, Diagnostik, Preskriptif), optionally extended by
// the AI advisor.
package advice

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/internal/goal"
	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/types"
)

// Advisor elaborates the rule-based answer with a model-generated one.
type Advisor interface {
	GenerateAdviceText(ctx context.Context, userQuestion, financialSnapshot string) (string, error)
}

type Service struct {
	transactions types.TransactionStore
	budgets      types.BudgetStore
	goals        *goal.Service
	ai           Advisor
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(transactions types.TransactionStore, budgets types.BudgetStore, goals *goal.Service, ai Advisor, log zerolog.Logger) *Service {
	return &Service{transactions: transactions, budgets: budgets, goals: goals, ai: ai, log: log, now: time.Now}
}

var (
	amountPattern   = regexp.MustCompile(`(\d[\d.,]*)\s*(jt|juta|rb|ribu|k)?`)
	purchasePattern = regexp.MustCompile(`(?i)(boleh beli|beli|buy|afford|mampu|aman beli)`)
)

// parseAmountFromQuestion pulls the first number out of a free-form question,
// honoring the jt/juta and rb/ribu/k shorthand.
func parseAmountFromQuestion(question string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return 0, false
	}
	raw := strings.ReplaceAll(m[1], ".", "")
	raw = strings.Replace(raw, ",", ".", 1)
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	switch m[2] {
	case "jt", "juta":
		return parsed * 1_000_000, true
	case "rb", "ribu", "k":
		return parsed * 1_000, true
	}
	return parsed, true
}

func isPurchaseQuestion(question string) bool {
	return purchasePattern.MatchString(question)
}

type overspent struct {
	category string
	overBy   float64
}

type snapshot struct {
	income      float64
	expense     float64
	balance     float64
	topCategory string
	topAmount   float64
	overspent   []overspent
	goal        goal.Status
}

func buildRuleText(s snapshot, question string) string {
	descriptive := fmt.Sprintf("Deskriptif: bulan ini pemasukan %.2f, pengeluaran %.2f, saldo %.2f.",
		s.income, s.expense, s.balance)

	var diag []string
	if s.topCategory != "" {
		diag = append(diag, fmt.Sprintf("pengeluaran terbesar ada di kategori %s (%.2f).", s.topCategory, s.topAmount))
	} else {
		diag = append(diag, "belum ada pola kategori pengeluaran yang dominan.")
	}
	if len(s.overspent) > 0 {
		diag = append(diag, fmt.Sprintf("budget kategori %s melewati limit sebesar %.2f.",
			s.overspent[0].category, s.overspent[0].overBy))
	}
	diagnostic := "Diagnostik: " + strings.Join(diag, " ")

	var prescriptive string
	purchaseAmount, hasAmount := parseAmountFromQuestion(question)
	switch {
	case isPurchaseQuestion(question):
		var reserveForGoal float64
		if s.goal.Remaining > 0 {
			reserveForGoal = s.balance * 0.5
			if s.goal.Remaining < reserveForGoal {
				reserveForGoal = s.goal.Remaining
			}
		} else {
			reserveForGoal = s.balance * 0.2
		}
		if reserveForGoal < 0 {
			reserveForGoal = 0
		}
		discretionary := s.balance - reserveForGoal
		if discretionary < 0 {
			discretionary = 0
		}

		switch {
		case hasAmount && purchaseAmount <= discretionary:
			prescriptive = fmt.Sprintf("Preskriptif: pembelian %.2f masih relatif aman, tapi tetap sisakan dana darurat dan dana goal.", purchaseAmount)
		case hasAmount:
			prescriptive = fmt.Sprintf("Preskriptif: pembelian %.2f sebaiknya ditunda karena melebihi ruang belanja aman bulan ini (%.2f).", purchaseAmount, discretionary)
		case s.balance <= 0:
			prescriptive = "Preskriptif: tunda pembelian non-prioritas dulu, fokus menormalkan cashflow sampai saldo bulanan kembali positif."
		default:
			prescriptive = fmt.Sprintf("Preskriptif: pembelian boleh dipertimbangkan jika nominalnya di bawah %.2f dan tidak mengganggu target tabungan.", s.balance*0.3)
		}

	case s.balance <= 0:
		prescriptive = "Preskriptif: lakukan pengurangan pengeluaran kategori terbesar 10-20% minggu ini agar cashflow membaik."

	case s.goal.Remaining > 0:
		prescriptive = fmt.Sprintf("Preskriptif: alokasikan minimal %.2f dari saldo bulan ini ke target tabungan agar progress lebih cepat.", s.balance*0.3)

	default:
		prescriptive = "Preskriptif: pertahankan rasio tabungan saat ini dan review budget kategori mingguan supaya konsisten."
	}

	return strings.TrimSpace(descriptive + " " + diagnostic + " " + prescriptive)
}

func (s snapshot) text() string {
	over := "none"
	if len(s.overspent) > 0 {
		parts := make([]string, len(s.overspent))
		for i, o := range s.overspent {
			parts[i] = fmt.Sprintf("%s:%.2f", o.category, o.overBy)
		}
		over = strings.Join(parts, ",")
	}
	top := s.topCategory
	if top == "" {
		top = "N/A"
	}
	return strings.Join([]string{
		"period=monthly_to_date",
		fmt.Sprintf("income=%.2f", s.income),
		fmt.Sprintf("expense=%.2f", s.expense),
		fmt.Sprintf("balance=%.2f", s.balance),
		"topExpenseCategory=" + top,
		fmt.Sprintf("topExpenseAmount=%.2f", s.topAmount),
		"overspentBudgets=" + over,
		fmt.Sprintf("goalTarget=%.2f", s.goal.Target),
		fmt.Sprintf("goalProgress=%.2f", s.goal.Progress),
		fmt.Sprintf("goalRemaining=%.2f", s.goal.Remaining),
		fmt.Sprintf("goalProgressPercent=%.2f", s.goal.Percent),
	}, "; ")
}

func normalizeCategory(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// Answer builds the advice reply for the user's question over month-to-date
// data.
func (s *Service) Answer(ctx context.Context, userID, question string) (string, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	txs, err := s.transactions.ListTransactionsInRange(ctx, userID, start, now)
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return messages.AdviceNoTransactions(), nil
	}

	snap := snapshot{}
	byCategory := map[string]float64{}
	var order []string
	for _, tx := range txs {
		if tx.Type == types.TransactionIncome {
			snap.income += tx.Amount
			continue
		}
		snap.expense += tx.Amount
		c := normalizeCategory(tx.Category)
		if _, seen := byCategory[c]; !seen {
			order = append(order, c)
		}
		byCategory[c] += tx.Amount
	}
	snap.balance = snap.income - snap.expense
	sort.SliceStable(order, func(i, j int) bool { return byCategory[order[i]] > byCategory[order[j]] })
	if len(order) > 0 {
		snap.topCategory = order[0]
		snap.topAmount = byCategory[order[0]]
	}

	budgets, err := s.budgets.ListBudgets(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, b := range budgets {
		c := normalizeCategory(b.Category)
		if overBy := byCategory[c] - b.MonthlyLimit; overBy > 0 {
			snap.overspent = append(snap.overspent, overspent{category: c, overBy: overBy})
		}
	}
	sort.SliceStable(snap.overspent, func(i, j int) bool { return snap.overspent[i].overBy > snap.overspent[j].overBy })

	snap.goal, err = s.goals.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}

	ruleText := buildRuleText(snap, question)
	if s.ai == nil {
		return ruleText, nil
	}

	aiText, err := s.ai.GenerateAdviceText(ctx, question, snap.text())
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("advice elaboration failed, returning rules only")
		return ruleText, nil
	}
	return strings.TrimSpace(ruleText + " " + aiText), nil
}
