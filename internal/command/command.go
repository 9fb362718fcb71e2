// Package command implements the deterministic slash-command grammar. Anything
// it cannot parse yields KindNone and falls through to AI intent extraction.
package command

import (
	"math"
	"strconv"
	"strings"

	"github.com/dimasprakoso/catatduit/types"
)

type Kind string

const (
	KindHelp       Kind = "HELP"
	KindInsight    Kind = "INSIGHT"
	KindAdvice     Kind = "ADVICE"
	KindReport     Kind = "REPORT"
	KindBudgetSet  Kind = "BUDGET_SET"
	KindGoalSet    Kind = "GOAL_SET"
	KindGoalStatus Kind = "GOAL_STATUS"
	KindNone       Kind = "NONE"
)

type Parsed struct {
	Kind         Kind
	Period       types.ReportPeriod
	Category     string
	MonthlyLimit float64
	TargetAmount float64
	// Question is empty when /advice is sent bare; callers substitute the
	// default question.
	Question string
}

func none() Parsed { return Parsed{Kind: KindNone} }

func normalizeText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Parse recognizes the fixed command grammar. Keywords are case-insensitive;
// categories and advice questions keep their original case.
func Parse(raw string) Parsed {
	text := normalizeText(raw)
	if text == "" || !strings.HasPrefix(text, "/") {
		return none()
	}
	lower := strings.ToLower(text)

	switch lower {
	case "/help":
		return Parsed{Kind: KindHelp}
	case "/insight":
		return Parsed{Kind: KindInsight}
	case "/advice":
		return Parsed{Kind: KindAdvice}
	case "/goal status":
		return Parsed{Kind: KindGoalStatus}
	}

	if strings.HasPrefix(lower, "/advice ") {
		return Parsed{Kind: KindAdvice, Question: strings.TrimSpace(text[len("/advice "):])}
	}

	if strings.HasPrefix(lower, "/report") {
		fields := strings.Fields(lower)
		period := ""
		if len(fields) > 1 {
			period = fields[1]
		}
		return Parsed{Kind: KindReport, Period: types.ParseReportPeriod(period)}
	}

	if strings.HasPrefix(lower, "/goal set ") {
		amount, ok := ParseShorthandAmount(text[len("/goal set "):])
		if !ok {
			return none()
		}
		return Parsed{Kind: KindGoalSet, TargetAmount: amount}
	}

	if strings.HasPrefix(lower, "/budget set ") {
		parts := strings.Fields(text)
		if len(parts) < 4 {
			return none()
		}
		amount, ok := ParseShorthandAmount(parts[len(parts)-1])
		if !ok {
			return none()
		}
		category := normalizeText(strings.Join(parts[2:len(parts)-1], " "))
		if category == "" {
			return none()
		}
		return Parsed{Kind: KindBudgetSet, Category: category, MonthlyLimit: amount}
	}

	return none()
}

// ParseShorthandAmount parses the colloquial Indonesian amount grammar:
// digits optionally suffixed with jt/juta (millions) or rb/ribu/k (thousands),
// with `,` or `.` as decimal separator on the suffixed form. Bare numbers keep
// digits only, so "1.500.000" reads as 1500000.
func ParseShorthandAmount(raw string) (float64, bool) {
	compact := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if compact == "" {
		return 0, false
	}

	for _, unit := range []struct {
		suffix     string
		multiplier float64
	}{
		{"juta", 1_000_000},
		{"jt", 1_000_000},
		{"ribu", 1_000},
		{"rb", 1_000},
		{"k", 1_000},
	} {
		if !strings.HasSuffix(compact, unit.suffix) {
			continue
		}
		numeric := strings.TrimSuffix(compact, unit.suffix)
		if numeric == "" || !isNumericPart(numeric) {
			break
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(numeric, ",", "."), 64)
		if err != nil || value <= 0 {
			return 0, false
		}
		return math.Round(value * unit.multiplier), true
	}

	var digits strings.Builder
	for _, r := range compact {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func isNumericPart(s string) bool {
	seenDigit := false
	seenSep := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == ',' || r == '.':
			if seenSep {
				return false
			}
			seenSep = true
		default:
			return false
		}
	}
	return seenDigit
}
