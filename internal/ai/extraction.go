package ai

import (
	"fmt"
	"time"
)

const (
	IntentRecordTransaction = "RECORD_TRANSACTION"
	IntentRequestReport     = "REQUEST_REPORT"
	IntentRequestInsight    = "REQUEST_INSIGHT"
	IntentRequestAdvice     = "REQUEST_FINANCIAL_ADVICE"
	IntentHelp              = "HELP"
	IntentUnknown           = "UNKNOWN"
)

// Extraction is the strict-JSON contract the model must honor. Nullable
// fields stay nil when the model is unsure; the dispatcher never guesses.
type Extraction struct {
	Intent       string   `json:"intent"`
	Type         *string  `json:"type"`
	Amount       *float64 `json:"amount"`
	Category     *string  `json:"category"`
	Merchant     *string  `json:"merchant"`
	Note         *string  `json:"note"`
	OccurredAt   *string  `json:"occurredAt"`
	ReportPeriod *string  `json:"reportPeriod"`
	AdviceQuery  *string  `json:"adviceQuery"`
}

func validIntent(intent string) bool {
	switch intent {
	case IntentRecordTransaction, IntentRequestReport, IntentRequestInsight,
		IntentRequestAdvice, IntentHelp, IntentUnknown:
		return true
	}
	return false
}

// Validate rejects payloads that parse as JSON but break the contract.
func (e *Extraction) Validate() error {
	if !validIntent(e.Intent) {
		return fmt.Errorf("invalid intent %q", e.Intent)
	}
	if e.Type != nil && *e.Type != "INCOME" && *e.Type != "EXPENSE" {
		return fmt.Errorf("invalid transaction type %q", *e.Type)
	}
	if e.Amount != nil && *e.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v", *e.Amount)
	}
	if e.Category != nil && *e.Category == "" {
		return fmt.Errorf("category must not be empty")
	}
	if e.OccurredAt != nil {
		if _, err := time.Parse(time.RFC3339, *e.OccurredAt); err != nil {
			return fmt.Errorf("invalid occurredAt: %w", err)
		}
	}
	return nil
}

// IsExtractable reports whether the extraction carries everything a
// transaction needs; anything less yields a clarification reply instead.
func (e *Extraction) IsExtractable() bool {
	return e.Intent == IntentRecordTransaction &&
		e.Type != nil && e.Amount != nil && e.Category != nil
}

// OccurredAtOrNow parses the extracted timestamp, defaulting to now when the
// model left it null.
func (e *Extraction) OccurredAtOrNow(now time.Time) time.Time {
	if e.OccurredAt == nil {
		return now
	}
	t, err := time.Parse(time.RFC3339, *e.OccurredAt)
	if err != nil {
		return now
	}
	return t
}
