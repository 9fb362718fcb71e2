package onboarding

import (
	"strings"
	"testing"

	"github.com/dimasprakoso/catatduit/types"
)

func TestAdvanceWaitRegister(t *testing.T) {
	for _, input := range []string{"register", "REGISTER", " /register ", "Register"} {
		got := Advance(types.StepWaitRegister, input, false)
		if got.Action != ActionStart {
			t.Fatalf("Advance(WAIT_REGISTER, %q) action = %v, want start", input, got.Action)
		}
	}

	got := Advance(types.StepWaitRegister, "halo bot", false)
	if got.Action != ActionNone || !strings.Contains(got.Reply, "register") {
		t.Fatalf("non-register input should repeat the register prompt, got %+v", got)
	}
}

func TestAdvanceName(t *testing.T) {
	got := Advance(types.StepAskName, "  Budi Santoso  ", false)
	if got.Action != ActionSetName || got.Name != "Budi Santoso" {
		t.Fatalf("name capture = %+v", got)
	}

	got = Advance(types.StepAskName, "B", false)
	if got.Action != ActionNone || !strings.Contains(got.Reply, "pendek") {
		t.Fatalf("short name should be rejected, got %+v", got)
	}
}

func TestAdvanceCurrency(t *testing.T) {
	got := Advance(types.StepAskCurrency, "idr", false)
	if got.Action != ActionSetCurrency || got.Currency != "IDR" {
		t.Fatalf("currency capture = %+v", got)
	}

	got = Advance(types.StepAskCurrency, "EUR", false)
	if got.Action != ActionNone {
		t.Fatalf("unsupported currency should be rejected, got %+v", got)
	}
}

func TestAdvanceAmounts(t *testing.T) {
	got := Advance(types.StepAskMonthlyBudget, "3.000.000", false)
	if got.Action != ActionSetMonthlyBudget || got.Amount != 3000000 {
		t.Fatalf("monthly budget capture = %+v", got)
	}

	got = Advance(types.StepAskMonthlyBudget, "nanti saja", false)
	if got.Action != ActionNone {
		t.Fatalf("non-numeric budget should be rejected, got %+v", got)
	}

	got = Advance(types.StepAskSavingsTarget, "10000000", false)
	if got.Action != ActionComplete || got.Amount != 10000000 {
		t.Fatalf("savings target capture = %+v", got)
	}

	got = Advance(types.StepAskSavingsTarget, "0", false)
	if got.Action != ActionNone {
		t.Fatalf("zero savings target should be rejected, got %+v", got)
	}
}

func TestAdvanceGuards(t *testing.T) {
	got := Advance(types.StepAskName, "", true)
	if got.Action != ActionNone || !strings.Contains(got.Reply, "teks") {
		t.Fatalf("image during onboarding should ask for text, got %+v", got)
	}

	got = Advance(types.StepAskCurrency, "/report", false)
	if got.Action != ActionNone || !strings.Contains(got.Reply, "registrasi selesai") {
		t.Fatalf("commands should stay locked mid-flow, got %+v", got)
	}
}
