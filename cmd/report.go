package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <year> <month>",
	Short: "Generate an AI summary of a month's attendance",
	Long: `Report reads the consolidated timeline for a month and asks an AI
model for a written summary with per-person notes and anomalies.
Requires a consolidated timeline, run consolidate first.`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("provider", "openai", "AI provider to use (openai, gemini)")
}

// buildReportProvider creates the AI provider selected by flag.
func buildReportProvider(ctx context.Context, cfg *config.Config, name string) (report.Provider, error) {
	switch name {
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		pricing := cfg.GetModelPricing("gpt-4.1-mini").Standard
		return report.NewOpenAIProvider(cfg.OpenAI.Token, report.RequestPricing{
			Input:  pricing.Input,
			Output: pricing.Output,
		}), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		pricing := cfg.GetModelPricing("gemini-2.5-flash").Standard
		return report.NewGeminiProvider(ctx, cfg.Gemini.APIKey, report.RequestPricing{
			Input:  pricing.Input,
			Output: pricing.Output,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q, expected openai or gemini", name)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", args[0], err)
	}
	month, err := parseMonthArg(args[1])
	if err != nil {
		return err
	}

	cfg := config.Load()
	st, err := buildStore(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	timeline, err := attendance.NewConsolidator(st).ReadTimeline(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to read timeline: %w", err)
	}
	if len(timeline) == 0 {
		return fmt.Errorf("no consolidated records for %s %d, run consolidate first", month, year)
	}

	provider, err := buildReportProvider(ctx, cfg, mustGetString(cmd, "provider"))
	if err != nil {
		return err
	}

	fmt.Printf("Generating report for %s %d with %s...\n", month, year, provider.Name())

	summary, err := report.Generate(ctx, provider, year, month, timeline)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", summary.Summary)

	if len(summary.People) > 0 {
		fmt.Println("\nPer person:")
		for _, person := range summary.People {
			fmt.Printf("  %s: %d days present. %s\n", person.Name, person.DaysPresent, person.Notes)
		}
	}
	if len(summary.Anomalies) > 0 {
		fmt.Println("\nAnomalies:")
		for _, anomaly := range summary.Anomalies {
			fmt.Printf("  - %s\n", anomaly)
		}
	}

	usage := provider.GetUsage()
	fmt.Printf("\nTokens: %d in / %d out, cost $%.4f\n", usage.InputTokens, usage.OutputTokens, usage.TotalCost)
	return nil
}
