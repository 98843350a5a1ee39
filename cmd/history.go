package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/tracker"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List tracked applications",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, store *tracker.Store, log *zap.Logger) error {
			status, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")
			return listHistory(ctx, store, status, limit)
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count applications by status and platform",
	Run: func(_ *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, store *tracker.Store, _ *zap.Logger) error {
			return printStats(ctx, store)
		})
	},
}

var historySetStatusCmd = &cobra.Command{
	Use:   "set-status <application-id> <status>",
	Short: "Change the status of an application, e.g. after an interview",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *tracker.Store, log *zap.Logger) error {
			status, err := tracker.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := store.UpdateStatus(ctx, args[0], status); err != nil {
				return err
			}
			log.Info("status updated", zap.String("id", args[0]), zap.String("status", string(status)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyStatsCmd, historySetStatusCmd)

	historyCmd.Flags().StringP("status", "s", "", "show only applications with this status")
	historyCmd.Flags().IntP("limit", "n", 50, "maximum number of applications to show, 0 for all")
}

func withStore(fn func(ctx context.Context, store *tracker.Store, log *zap.Logger) error) {
	ctx := context.Background()
	log := newLogger(nil)

	path := viper.GetString("database")
	store, err := tracker.Open(ctx, path)
	if err != nil {
		log.Fatal("opening tracker", zap.Error(err), zap.String("database", path))
	}
	defer store.Close()

	if err := fn(ctx, store, log); err != nil {
		log.Fatal("history", zap.Error(err))
	}
}

func listHistory(ctx context.Context, store *tracker.Store, rawStatus string, limit int) error {
	var status tracker.Status
	if rawStatus != "" {
		var err error
		if status, err = tracker.ParseStatus(rawStatus); err != nil {
			return err
		}
	}

	apps, err := store.List(ctx, status, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAPPLIED\tSTATUS\tPLATFORM\tCOMPANY\tTITLE\tMATCH")
	for _, app := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.1f%%\n",
			app.ID, app.AppliedAt.Local().Format(time.DateTime), app.Status, app.Platform, app.Company, app.Title, app.Score)
	}
	return w.Flush()
}

func printStats(ctx context.Context, store *tracker.Store) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Total applications: %d\n\nBy status:\n", stats.Total)
	for _, status := range sortedKeys(stats.ByStatus) {
		fmt.Printf("  %-12s %d\n", status, stats.ByStatus[status])
	}

	fmt.Println("\nApplied by platform:")
	for _, platform := range sortedKeys(stats.ByPlatform) {
		fmt.Printf("  %-16s %d\n", platform, stats.ByPlatform[platform])
	}
	return nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
