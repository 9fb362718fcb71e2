package inbound

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/internal/advice"
	"github.com/dimasprakoso/catatduit/internal/ai"
	"github.com/dimasprakoso/catatduit/internal/budget"
	"github.com/dimasprakoso/catatduit/internal/goal"
	"github.com/dimasprakoso/catatduit/internal/insight"
	"github.com/dimasprakoso/catatduit/internal/onboarding"
	"github.com/dimasprakoso/catatduit/internal/payment"
	"github.com/dimasprakoso/catatduit/internal/ratelimit"
	"github.com/dimasprakoso/catatduit/internal/report"
	"github.com/dimasprakoso/catatduit/types"
)

type mockUserStore struct {
	user *types.User
}

func (m *mockUserStore) FindOrCreateUserByWaNumber(context.Context, string) (*types.User, bool, error) {
	return m.user, false, nil
}
func (m *mockUserStore) GetUserByID(context.Context, string) (*types.User, error) {
	return m.user, nil
}
func (m *mockUserStore) SetOnboardingName(_ context.Context, _ string, name string, next types.OnboardingStep) error {
	m.user.Name = name
	m.user.OnboardingStep = next
	return nil
}
func (m *mockUserStore) SetOnboardingCurrency(_ context.Context, _ string, currency string, next types.OnboardingStep) error {
	m.user.Currency = currency
	m.user.OnboardingStep = next
	return nil
}
func (m *mockUserStore) SetOnboardingMonthlyBudget(_ context.Context, _ string, amount float64, next types.OnboardingStep) error {
	m.user.MonthlyBudget = &amount
	m.user.OnboardingStep = next
	return nil
}
func (m *mockUserStore) AdvanceOnboardingStep(_ context.Context, _ string, next types.OnboardingStep) error {
	m.user.OnboardingStep = next
	return nil
}
func (m *mockUserStore) CompleteRegistration(context.Context, string, float64) error {
	m.user.RegistrationStatus = types.RegistrationCompleted
	m.user.OnboardingStep = types.StepCompleted
	return nil
}

type mockMessageStore struct {
	logs []types.MessageLog
}

func (m *mockMessageStore) CreateMessageLog(_ context.Context, log *types.MessageLog) (*types.MessageLog, error) {
	log.ID = "msg-1"
	m.logs = append(m.logs, *log)
	return log, nil
}

type mockTxStore struct {
	created []types.Transaction
	listed  []types.Transaction
}

func (m *mockTxStore) CreateTransaction(_ context.Context, tx *types.Transaction) (*types.Transaction, error) {
	tx.ID = "tx-1"
	m.created = append(m.created, *tx)
	return tx, nil
}
func (m *mockTxStore) ListTransactionsInRange(context.Context, string, time.Time, time.Time) ([]types.Transaction, error) {
	return m.listed, nil
}
func (m *mockTxStore) SumTransactionsByType(context.Context, string, types.TransactionType) (float64, error) {
	return 0, nil
}
func (m *mockTxStore) SumCategoryExpensesInRange(context.Context, string, string, time.Time, time.Time) (float64, error) {
	var total float64
	for _, tx := range m.created {
		if tx.Type == types.TransactionExpense {
			total += tx.Amount
		}
	}
	return total, nil
}

type mockBudgetStore struct {
	budget *types.Budget
}

func (m *mockBudgetStore) UpsertBudget(_ context.Context, userID, category string, limit float64) (*types.Budget, error) {
	m.budget = &types.Budget{UserID: userID, Category: category, MonthlyLimit: limit}
	return m.budget, nil
}
func (m *mockBudgetStore) GetBudget(context.Context, string, string) (*types.Budget, error) {
	return m.budget, nil
}
func (m *mockBudgetStore) ListBudgets(context.Context, string) ([]types.Budget, error) {
	return nil, nil
}

type mockGoalStore struct{}

func (mockGoalStore) UpsertGoalProgress(_ context.Context, userID string, progress float64) (*types.SavingsGoal, error) {
	return &types.SavingsGoal{UserID: userID, CurrentProgress: progress}, nil
}
func (mockGoalStore) UpsertGoalTarget(_ context.Context, userID string, target, progress float64) (*types.SavingsGoal, error) {
	return &types.SavingsGoal{UserID: userID, TargetAmount: target, CurrentProgress: progress}, nil
}

type mockPaymentStore struct{}

func (mockPaymentStore) CreateOrGetPendingPaymentSession(_ context.Context, userID string, amount float64) (*types.PaymentSession, error) {
	return &types.PaymentSession{UserID: userID, Token: "tok123", Amount: amount, Status: types.PaymentPending}, nil
}
func (mockPaymentStore) GetPaymentSessionByToken(context.Context, string) (*types.PaymentSession, *types.User, error) {
	return nil, nil, errors.New("not implemented")
}
func (mockPaymentStore) ConfirmPaymentByToken(context.Context, string) (*types.PaymentSession, error) {
	return nil, errors.New("not implemented")
}

type mockSubscriptionStore struct {
	latest *types.Subscription
}

func (m *mockSubscriptionStore) GetLatestSubscription(context.Context, string) (*types.Subscription, error) {
	return m.latest, nil
}

type mockAILogStore struct {
	entries []types.AnalysisType
}

func (m *mockAILogStore) CreateAIAnalysisLog(_ context.Context, _, _ string, analysisType types.AnalysisType, _ any) error {
	m.entries = append(m.entries, analysisType)
	return nil
}

type stubExtractor struct {
	extraction *ai.Extraction
	err        error
}

func (s *stubExtractor) ExtractIntent(context.Context, string, time.Time) (*ai.Extraction, error) {
	return s.extraction, s.err
}

type stubOCR struct {
	text string
	err  error
}

func (s *stubOCR) ExtractReceiptText(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

type stubCharts struct{}

func (stubCharts) Render(context.Context, report.Aggregated) ([]byte, error) {
	return []byte("png"), nil
}

type fixture struct {
	processor *Processor
	users     *mockUserStore
	txs       *mockTxStore
	aiLogs    *mockAILogStore
	extractor *stubExtractor
	ocr       *stubOCR
	subs      *mockSubscriptionStore
	budgets   *mockBudgetStore
}

func newFixture(t *testing.T, user *types.User) *fixture {
	t.Helper()
	log := zerolog.Nop()

	users := &mockUserStore{user: user}
	txs := &mockTxStore{}
	budgets := &mockBudgetStore{}
	aiLogs := &mockAILogStore{}
	extractor := &stubExtractor{}
	ocr := &stubOCR{}
	subs := &mockSubscriptionStore{latest: &types.Subscription{Status: types.SubscriptionActive}}

	payments := payment.NewService(mockPaymentStore{}, "http://pay.local", 49000)
	goals := goal.NewService(mockGoalStore{}, txs)
	budgetSvc := budget.NewService(budgets, txs)

	f := &fixture{
		users:     users,
		txs:       txs,
		aiLogs:    aiLogs,
		extractor: extractor,
		ocr:       ocr,
		subs:      subs,
		budgets:   budgets,
	}
	f.processor = NewProcessor(ProcessorDeps{
		Limiter:       ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 100, time.Minute, log),
		Users:         users,
		MessageLogs:   &mockMessageStore{},
		Transactions:  txs,
		Subscriptions: subs,
		AILogs:        aiLogs,
		Extractor:     extractor,
		OCR:           ocr,
		Reports:       report.NewBuilder(txs, stubCharts{}, log),
		Onboarding:    onboarding.NewService(users, payments, log),
		Payments:      payments,
		Budgets:       budgetSvc,
		Goals:         goals,
		Insights:      insight.NewService(txs, nil, log),
		Advisor:       advice.NewService(txs, budgets, goals, nil, log),
		Log:           log,
	})
	return f
}

func completedUser() *types.User {
	return &types.User{
		ID:                 "u1",
		WaNumber:           "628111",
		Currency:           "IDR",
		RegistrationStatus: types.RegistrationCompleted,
		OnboardingStep:     types.StepCompleted,
	}
}

func textPayload(text string) Payload {
	return Payload{WaNumber: "628111", MessageType: "TEXT", Text: text}
}

func TestProcessRateLimited(t *testing.T) {
	f := newFixture(t, completedUser())
	f.processor.limiter = ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1, time.Minute, zerolog.Nop())

	if res, err := f.processor.Process(context.Background(), textPayload("/help")); err != nil || res.Status != http.StatusOK {
		t.Fatalf("first message = %v, %v", res.Status, err)
	}
	res, err := f.processor.Process(context.Background(), textPayload("/help"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", res.Status)
	}
	if !strings.Contains(res.Body.ReplyText, "Terlalu banyak request") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
}

func TestProcessUnregisteredUserGetsRegisterPrompt(t *testing.T) {
	user := &types.User{ID: "u1", WaNumber: "628111", RegistrationStatus: types.RegistrationPending, OnboardingStep: types.StepWaitRegister}
	f := newFixture(t, user)

	res, err := f.processor.Process(context.Background(), textPayload("halo"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Body.ReplyText, "register") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}

	res, err = f.processor.Process(context.Background(), textPayload("register"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Body.ReplyText, "Registrasi dimulai") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
	if user.OnboardingStep != types.StepAskName {
		t.Fatalf("step = %s, want ASK_NAME", user.OnboardingStep)
	}
}

func TestProcessSubscriptionGate(t *testing.T) {
	f := newFixture(t, completedUser())
	f.subs.latest = &types.Subscription{Status: types.SubscriptionInactive}

	res, err := f.processor.Process(context.Background(), textPayload("/help"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Body.ReplyText, "Subscription Anda belum aktif") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
	if !strings.Contains(res.Body.ReplyText, "http://pay.local/pay/tok123") {
		t.Fatalf("payment link missing: %q", res.Body.ReplyText)
	}
}

func TestProcessHelpCommand(t *testing.T) {
	f := newFixture(t, completedUser())

	res, err := f.processor.Process(context.Background(), textPayload("/help"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Body.ReplyText, "Perintah yang tersedia") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
	if len(f.aiLogs.entries) != 0 {
		t.Fatalf("commands must not hit the AI log, got %v", f.aiLogs.entries)
	}
}

func TestProcessTextTransactionWithBudgetAlert(t *testing.T) {
	f := newFixture(t, completedUser())
	f.budgets.budget = &types.Budget{Category: "makan", MonthlyLimit: 10000}

	txType := "EXPENSE"
	amount := 45000.0
	category := "makan"
	f.extractor.extraction = &ai.Extraction{
		Intent:   ai.IntentRecordTransaction,
		Type:     &txType,
		Amount:   &amount,
		Category: &category,
	}

	res, err := f.processor.Process(context.Background(), textPayload("makan siang 45000"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Body.ReplyText, "Transaksi berhasil dicatat") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
	if !strings.Contains(res.Body.ReplyText, "terlampaui") {
		t.Fatalf("budget alert missing: %q", res.Body.ReplyText)
	}
	if len(f.txs.created) != 1 || f.txs.created[0].Source != types.SourceText {
		t.Fatalf("created = %+v", f.txs.created)
	}
	if len(f.aiLogs.entries) != 2 || f.aiLogs.entries[0] != types.AnalysisIntent || f.aiLogs.entries[1] != types.AnalysisExtraction {
		t.Fatalf("analysis log sequence = %v", f.aiLogs.entries)
	}
}

func TestProcessUnreadableTransaction(t *testing.T) {
	f := newFixture(t, completedUser())
	f.extractor.extraction = &ai.Extraction{Intent: ai.IntentRecordTransaction}

	res, err := f.processor.Process(context.Background(), textPayload("hmm"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Body.ReplyText, "belum bisa membaca detail transaksi") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
	if len(f.txs.created) != 0 {
		t.Fatalf("no transaction should be created, got %+v", f.txs.created)
	}
}

func TestProcessImageMissingPayload(t *testing.T) {
	f := newFixture(t, completedUser())

	res, err := f.processor.Process(context.Background(), Payload{WaNumber: "628111", MessageType: "IMAGE"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Status)
	}
}

func TestProcessImageOCRFailureIsGraceful(t *testing.T) {
	f := newFixture(t, completedUser())
	f.ocr.err = errors.New("vision unavailable")

	payload := Payload{
		WaNumber:    "628111",
		MessageType: "IMAGE",
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("fake-image")),
	}
	res, err := f.processor.Process(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Status)
	}
	if !strings.Contains(res.Body.ReplyText, "Gagal membaca teks dari gambar") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
}

func TestProcessImageTransaction(t *testing.T) {
	f := newFixture(t, completedUser())
	f.ocr.text = "WARUNG SEDERHANA\nTOTAL 45.000"

	txType := "EXPENSE"
	amount := 45000.0
	category := "makan"
	f.extractor.extraction = &ai.Extraction{
		Intent:   ai.IntentRecordTransaction,
		Type:     &txType,
		Amount:   &amount,
		Category: &category,
	}

	payload := Payload{
		WaNumber:    "628111",
		MessageType: "IMAGE",
		Caption:     "makan warung",
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("fake-image")),
	}
	res, err := f.processor.Process(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Body.ReplyText, "Transaksi berhasil dicatat") {
		t.Fatalf("reply = %q", res.Body.ReplyText)
	}
	if len(f.txs.created) != 1 || f.txs.created[0].Source != types.SourceOCR {
		t.Fatalf("created = %+v", f.txs.created)
	}
	if f.txs.created[0].RawText != f.ocr.text {
		t.Fatalf("raw text = %q, want OCR text", f.txs.created[0].RawText)
	}
}

func TestProcessReportCommandReturnsChart(t *testing.T) {
	f := newFixture(t, completedUser())
	f.txs.listed = []types.Transaction{
		{Type: types.TransactionIncome, Amount: 1000, Category: "Gaji", OccurredAt: time.Now().UTC()},
	}

	res, err := f.processor.Process(context.Background(), textPayload("/report monthly"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Body.ImageBase64 == "" || res.Body.ImageMimeType != "image/png" {
		t.Fatalf("chart missing from report reply: %+v", res.Body)
	}
}
