package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline <year> <month>",
	Short: "Print the consolidated timeline for a month",
	Args:  cobra.ExactArgs(2),
	RunE:  runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	timeline, err := attendance.NewConsolidator(st).ReadTimeline(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to read timeline: %w", err)
	}
	if len(timeline) == 0 {
		fmt.Printf("No consolidated records for %s %d, run consolidate first\n", month, year)
		return nil
	}

	current := ""
	for _, ev := range timeline {
		if ev.Name != current {
			current = ev.Name
			fmt.Printf("\n%s:\n", current)
		}
		fmt.Printf("  %s  %s\n", ev.Date, ev.Status)
	}
	return nil
}
