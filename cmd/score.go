package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/matching"
	"github.com/spigell/jobbot/internal/report"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score board listings or a single description against the resume without applying",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("description", "D", "", "score this job description instead of searching the boards")
	scoreCmd.Flags().String("title", "", "title for --description")
	scoreCmd.Flags().IntP("top", "n", 20, "how many of the best listings to print")
}

func score(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newSession(ctx, cmd, false)
	defer s.Close()

	if description, _ := cmd.Flags().GetString("description"); description != "" {
		title, _ := cmd.Flags().GetString("title")
		result, err := s.scorer.Score(s.resume.Profile, &matching.JobRecord{ID: "adhoc", Title: title, Description: description})
		if err != nil {
			s.logger.Fatal("scoring", zap.Error(err))
		}
		pretty, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(pretty))
		return
	}

	jobs, err := s.newDriver().Collect(ctx)
	if err != nil {
		s.logger.Fatal("collecting jobs", zap.Error(err))
	}

	for _, job := range jobs.Items {
		if err := s.scorer.Attach(s.resume.Profile, job); err != nil {
			s.logger.Fatal("scoring", zap.Error(err), zap.String("job_id", job.ID))
		}
	}
	jobs.SortByScore()

	top, _ := cmd.Flags().GetInt("top")
	for _, job := range jobs.Top(top).Items {
		fmt.Println(report.Line(job))
		for _, c := range matching.Categories {
			fmt.Printf("    %-10s %5.1f%%\n", c, job.Match.Component(c))
		}
	}
	s.logger.Info("scored", zap.Int("jobs", jobs.Len()), zap.Float64("min_match", s.config.Match.MinScore))
}
