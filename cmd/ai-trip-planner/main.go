package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	themeName string
	days      int
	publish   bool
	refresh   bool
)

var rootCmd = &cobra.Command{
	Use:   "ai-trip-planner",
	Short: "Plan trips, itineraries and travel journals from the terminal",
	Long: `ai-trip-planner plans trips with a language model.

Trips created here belong to CLI_USER_ID and are shared with the HTTP API
and the Telegram bot through the same database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "light", "Output theme: plain, light or dark")

	metricsCleanupCmd.Flags().IntVar(&days, "days", 30, "Delete metrics older than this many days")
	journalCmd.Flags().BoolVar(&publish, "publish", false, "Publish the journal to Ghost")
	journalCmd.Flags().BoolVar(&refresh, "regenerate", false, "Write a new journal even if one exists")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(tripsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(adaptCmd)
	rootCmd.AddCommand(photosCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(metricsCleanupCmd)
	rootCmd.AddCommand(sessionsCleanupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
