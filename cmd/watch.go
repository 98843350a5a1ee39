package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/report"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Repeat run cycles on an interval without confirmation",
	Run: func(cmd *cobra.Command, _ []string) {
		watch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude jobs if already applied")
	watchCmd.Flags().Duration("interval", 0, "pause between cycles (overrides watch.interval)")
}

func watch(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newSession(ctx, cmd, true)
	defer s.Close()

	interval := s.config.Watch.Interval
	if v, err := cmd.Flags().GetDuration("interval"); err == nil && v > 0 {
		interval = v
	}

	s.logger.Info("watching", zap.Duration("interval", interval), zap.Int("boards", len(s.boards)))

	err := s.newDriver().Watch(ctx, interval, func(summary *report.Summary) {
		writeSummary(s, summary, "")
	})
	if err != nil {
		s.logger.Fatal("watch failed", zap.Error(err))
	}

	s.logger.Info("stopped", zap.String("reason", "signal received"))
}
