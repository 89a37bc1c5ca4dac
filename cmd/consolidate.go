package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <year> <month>",
	Short: "Consolidate daily attendance records into monthly timelines",
	Long: `Consolidate reads all daily attendance records for a month, groups
them per person into chronological timelines and replaces the stored
consolidated view for that month. Running it again on the same data
produces the same result.`,
	Args: cobra.ExactArgs(2),
	RunE: runConsolidate,
}

func init() {
	rootCmd.AddCommand(consolidateCmd)
}

func runConsolidate(cmd *cobra.Command, args []string) error {
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

	consolidator := attendance.NewConsolidator(st)

	var bar *progressbar.ProgressBar
	consolidator.OnProgress = func(current, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(fmt.Sprintf("Consolidating %s %d", month, year)),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("days"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionFullWidth(),
			)
		}
		_ = bar.Set(current)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := consolidator.Consolidate(ctx, year, month)
	if err != nil {
		return fmt.Errorf("consolidation failed: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	fmt.Printf("Consolidated %s %d: %d days, %d people, %d events\n",
		month, year, result.Days, result.Identities, result.Events)
	if !result.Written {
		fmt.Println("No daily records found, nothing written")
	}
	return nil
}
