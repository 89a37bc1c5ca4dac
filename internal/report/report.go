package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// BuildMonthInput renders a consolidated timeline as the plain-text log the
// model receives. Events arrive already grouped per identity in chronological
// order and that grouping is preserved.
func BuildMonthInput(year int, month time.Month, events []attendance.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attendance log for %s %d\n", month.String(), year)

	if len(events) == 0 {
		b.WriteString("No events recorded.\n")
		return b.String()
	}

	current := ""
	for _, ev := range events {
		if ev.Name != current {
			current = ev.Name
			fmt.Fprintf(&b, "\n%s:\n", current)
		}
		fmt.Fprintf(&b, "%s %s\n", ev.Date, ev.Status)
	}

	return b.String()
}

// Generate builds the model input from a consolidated timeline and asks the
// provider for a monthly summary.
func Generate(ctx context.Context, provider Provider, year int, month time.Month, events []attendance.Event) (*MonthlySummary, error) {
	input := BuildMonthInput(year, month, events)

	summary, err := provider.SummarizeMonth(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report with %s: %w", provider.Name(), err)
	}

	return summary, nil
}
