package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-attendance",
	Short: "A CLI tool for face-recognition based attendance tracking",
	Long: `Face Attendance watches a camera, recognizes enrolled people and
records their clock-in and clock-out events in a hierarchical document
store. Daily records can be consolidated into per-person monthly
timelines and summarized with AI models.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
