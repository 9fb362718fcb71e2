package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/types"
)

type stubTxStore struct {
	txs []types.Transaction
}

func (s *stubTxStore) CreateTransaction(_ context.Context, tx *types.Transaction) (*types.Transaction, error) {
	return tx, nil
}

func (s *stubTxStore) ListTransactionsInRange(context.Context, string, time.Time, time.Time) ([]types.Transaction, error) {
	return s.txs, nil
}

func (s *stubTxStore) SumTransactionsByType(context.Context, string, types.TransactionType) (float64, error) {
	return 0, nil
}

func (s *stubTxStore) SumCategoryExpensesInRange(context.Context, string, string, time.Time, time.Time) (float64, error) {
	return 0, nil
}

type stubGenerator struct {
	text    string
	err     error
	summary string
}

func (g *stubGenerator) GenerateInsightText(_ context.Context, summary string) (string, error) {
	g.summary = summary
	return g.text, g.err
}

func tx(txType types.TransactionType, category string, amount float64) types.Transaction {
	return types.Transaction{Type: txType, Category: category, Amount: amount}
}

func TestBuildNoTransactions(t *testing.T) {
	svc := NewService(&stubTxStore{}, nil, zerolog.Nop())

	got, err := svc.Build(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(got, "Belum ada transaksi") {
		t.Fatalf("got %q, want no-transactions message", got)
	}
}

func TestBuildRulesOnly(t *testing.T) {
	store := &stubTxStore{txs: []types.Transaction{
		tx(types.TransactionIncome, "gaji", 5000000),
		tx(types.TransactionExpense, "makanan", 1200000),
		tx(types.TransactionExpense, "transportasi", 300000),
		tx(types.TransactionExpense, "makanan", 800000),
	}}
	svc := NewService(store, nil, zerolog.Nop())

	got, err := svc.Build(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(got, "Arus kas masih positif") {
		t.Errorf("got %q, want positive cashflow line", got)
	}
	if !strings.Contains(got, "makanan (2000000.00)") {
		t.Errorf("got %q, want makanan as top category", got)
	}
	if !strings.Contains(got, "savings rate: 54.0%") {
		t.Errorf("got %q, want savings rate line", got)
	}
}

func TestBuildNegativeCashflow(t *testing.T) {
	store := &stubTxStore{txs: []types.Transaction{
		tx(types.TransactionIncome, "gaji", 100000),
		tx(types.TransactionExpense, "belanja", 500000),
	}}
	svc := NewService(store, nil, zerolog.Nop())

	got, err := svc.Build(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(got, "lebih besar dari pemasukan") {
		t.Errorf("got %q, want overspend warning", got)
	}
}

func TestBuildAppendsAIText(t *testing.T) {
	store := &stubTxStore{txs: []types.Transaction{
		tx(types.TransactionIncome, "gaji", 2000000),
		tx(types.TransactionExpense, "makanan", 500000),
	}}
	gen := &stubGenerator{text: "Pertahankan pola ini."}
	svc := NewService(store, gen, zerolog.Nop())

	got, err := svc.Build(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasSuffix(got, "Pertahankan pola ini.") {
		t.Errorf("got %q, want AI text appended", got)
	}
	if !strings.Contains(gen.summary, "income=2000000.00") || !strings.Contains(gen.summary, "topCategory=makanan") {
		t.Errorf("summary = %q", gen.summary)
	}
}

func TestBuildFallsBackWhenAIFails(t *testing.T) {
	store := &stubTxStore{txs: []types.Transaction{
		tx(types.TransactionExpense, "makanan", 500000),
	}}
	gen := &stubGenerator{err: errors.New("model unavailable")}
	svc := NewService(store, gen, zerolog.Nop())

	got, err := svc.Build(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(got, "Kategori pengeluaran tertinggi: makanan") {
		t.Errorf("got %q, want rule text despite AI failure", got)
	}
}
