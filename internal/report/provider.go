// Package report generates natural-language monthly attendance reports
// from consolidated timelines using an LLM backend.
package report

import "context"

// Provider defines the interface for report generation backends.
type Provider interface {
	Name() string
	SummarizeMonth(ctx context.Context, input string) (*MonthlySummary, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// MonthlySummary is the model's structured report for one month.
type MonthlySummary struct {
	// Summary is a short prose overview of the month.
	Summary string `json:"summary"`
	// People holds one entry per identity seen in the month.
	People []PersonSummary `json:"people"`
	// Anomalies lists days or patterns worth a second look.
	Anomalies []string `json:"anomalies"`
}

// PersonSummary is the per-identity portion of a monthly report.
type PersonSummary struct {
	Name        string `json:"name"`
	DaysPresent int    `json:"days_present"`
	Notes       string `json:"notes"`
}
