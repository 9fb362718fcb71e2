package command

import (
	"testing"

	"github.com/dimasprakoso/catatduit/types"
)

func TestParseBudgetSet(t *testing.T) {
	got := Parse("/budget set makan luar 1500000")
	if got.Kind != KindBudgetSet {
		t.Fatalf("kind = %s, want BUDGET_SET", got.Kind)
	}
	if got.Category != "makan luar" {
		t.Fatalf("category = %q, want %q", got.Category, "makan luar")
	}
	if got.MonthlyLimit != 1500000 {
		t.Fatalf("monthlyLimit = %v, want 1500000", got.MonthlyLimit)
	}
}

func TestParseGoalSetShorthand(t *testing.T) {
	got := Parse("/goal set 1.5jt")
	if got.Kind != KindGoalSet || got.TargetAmount != 1500000 {
		t.Fatalf("got %+v, want GOAL_SET 1500000", got)
	}
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Parsed
	}{
		{"help", "/help", Parsed{Kind: KindHelp}},
		{"help mixed case", "/HELP", Parsed{Kind: KindHelp}},
		{"insight", "/insight", Parsed{Kind: KindInsight}},
		{"advice bare", "/advice", Parsed{Kind: KindAdvice}},
		{"advice with question", "/advice boleh beli hp 3500000 bulan ini?",
			Parsed{Kind: KindAdvice, Question: "boleh beli hp 3500000 bulan ini?"}},
		{"report default", "/report", Parsed{Kind: KindReport, Period: types.PeriodMonthly}},
		{"report weekly", "/report weekly", Parsed{Kind: KindReport, Period: types.PeriodWeekly}},
		{"report unknown period", "/report yearly", Parsed{Kind: KindReport, Period: types.PeriodMonthly}},
		{"goal status", "/goal status", Parsed{Kind: KindGoalStatus}},
		{"goal set plain", "/goal set 5000000", Parsed{Kind: KindGoalSet, TargetAmount: 5000000}},
		{"goal set ribu", "/goal set 750rb", Parsed{Kind: KindGoalSet, TargetAmount: 750000}},
		{"budget set non-numeric amount", "/budget set transport abc", Parsed{Kind: KindNone}},
		{"budget set too few tokens", "/budget set 500000", Parsed{Kind: KindNone}},
		{"unknown slash command", "/unknown thing", Parsed{Kind: KindNone}},
		{"non-slash text", "makan siang 45000", Parsed{Kind: KindNone}},
		{"empty", "", Parsed{Kind: KindNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.in); got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseShorthandAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.5jt", 1500000, true},
		{"1,5jt", 1500000, true},
		{"2juta", 2000000, true},
		{"750rb", 750000, true},
		{"10ribu", 10000, true},
		{"50k", 50000, true},
		{"1.500.000", 1500000, true},
		{"3000000", 3000000, true},
		{"abc", 0, false},
		{"0", 0, false},
		{"jt", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseShorthandAmount(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseShorthandAmount(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
