package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

type stubProvider struct {
	input  string
	result *MonthlySummary
	err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) SummarizeMonth(ctx context.Context, input string) (*MonthlySummary, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubProvider) GetUsage() *Usage { return &Usage{} }
func (s *stubProvider) ResetUsage()      {}

func TestBuildMonthInput_GroupsByPerson(t *testing.T) {
	events := []attendance.Event{
		{Date: "26/03/05 09:00:00", Name: "Alice", Status: attendance.StatusClockIn},
		{Date: "26/03/05 17:00:00", Name: "Alice", Status: attendance.StatusClockOut},
		{Date: "26/03/05 09:30:00", Name: "Bob", Status: attendance.StatusClockIn},
	}

	input := BuildMonthInput(2026, time.March, events)

	if !strings.Contains(input, "Attendance log for March 2026") {
		t.Errorf("missing header: %q", input)
	}
	if !strings.Contains(input, "Alice:\n26/03/05 09:00:00 Clock In\n26/03/05 17:00:00 Clock Out\n") {
		t.Errorf("Alice block malformed: %q", input)
	}
	if !strings.Contains(input, "Bob:\n26/03/05 09:30:00 Clock In\n") {
		t.Errorf("Bob block malformed: %q", input)
	}
}

func TestBuildMonthInput_EmptyTimeline(t *testing.T) {
	input := BuildMonthInput(2026, time.March, nil)
	if !strings.Contains(input, "No events recorded.") {
		t.Errorf("expected empty-month marker, got %q", input)
	}
}

func TestGenerate_PassesInputToProvider(t *testing.T) {
	provider := &stubProvider{result: &MonthlySummary{Summary: "quiet month"}}
	events := []attendance.Event{
		{Date: "26/03/05 09:00:00", Name: "Alice", Status: attendance.StatusClockIn},
	}

	summary, err := Generate(context.Background(), provider, 2026, time.March, events)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if summary.Summary != "quiet month" {
		t.Errorf("unexpected summary %q", summary.Summary)
	}
	if !strings.Contains(provider.input, "Alice") {
		t.Errorf("provider did not receive the timeline: %q", provider.input)
	}
}

func TestGenerate_ProviderErrorWrapped(t *testing.T) {
	provider := &stubProvider{err: errors.New("quota exceeded")}

	_, err := Generate(context.Background(), provider, 2026, time.March, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "stub") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestMonthlyReportPromptEmbedded(t *testing.T) {
	if !strings.Contains(monthlyReportPrompt, "days_present") {
		t.Error("prompt should describe the expected JSON schema")
	}
}
