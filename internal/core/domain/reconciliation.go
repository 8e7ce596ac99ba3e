package domain

import "github.com/shopspring/decimal"

// RateCandidate is one externally-sourced rate offered to the reconciliation
// engine for a currency pair.
type RateCandidate struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	Rate               decimal.Decimal `json:"rate"`
}

// ReconciliationOutcome classifies what happened to a single candidate.
type ReconciliationOutcome string

const (
	OutcomeUpdated  ReconciliationOutcome = "updated"  // existing row overwritten
	OutcomeInserted ReconciliationOutcome = "inserted" // pair seen for the first time
	OutcomeSkipped  ReconciliationOutcome = "skipped"  // recent manual override won
	OutcomeFailed   ReconciliationOutcome = "failed"   // storage failure, not retried
)

// PairResult records the outcome for one candidate pair.
type PairResult struct {
	BaseCurrencyCode   string                `json:"baseCurrencyCode"`
	TargetCurrencyCode string                `json:"targetCurrencyCode"`
	Outcome            ReconciliationOutcome `json:"outcome"`
	Error              string                `json:"error,omitempty"`
}

// ReconciliationReport enumerates per-pair outcomes of one reconciliation
// pass so the invoking job can report counts.
type ReconciliationReport struct {
	SourceLabel string       `json:"sourceLabel"`
	Results     []PairResult `json:"results"`
}

// Updated counts candidates that overwrote an existing row.
func (r *ReconciliationReport) Updated() int { return r.count(OutcomeUpdated) }

// Inserted counts candidates applied as fresh inserts.
func (r *ReconciliationReport) Inserted() int { return r.count(OutcomeInserted) }

// Skipped counts candidates rejected by an active manual override.
func (r *ReconciliationReport) Skipped() int { return r.count(OutcomeSkipped) }

// Failed counts candidates whose persistence failed.
func (r *ReconciliationReport) Failed() int { return r.count(OutcomeFailed) }

func (r *ReconciliationReport) count(o ReconciliationOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
