package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/report"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptDone                = "apply selected"
	PromptReportByPlatforms   = "Report by platforms"
	PromptManualApply         = "Choose jobs in manual mode"
	PromptAppendToExcludeFile = "Append all jobs to exclude file"
	PromptJobsToFile          = "Dump jobs to file"
)

var errSkip = errors.New("skip requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByPlatforms, PromptManualApply, PromptJobsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search, score and apply once",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude jobs if already applied")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation if found suitable jobs")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	runCmd.Flags().String("xlsx", "", "write the run report to this spreadsheet")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newSession(ctx, cmd, true)
	defer s.Close()

	d := s.newDriver()
	if !flagSet(cmd, "auto-approve") {
		d.Approve = func(_ context.Context, jobs *boards.Jobs) (*boards.Jobs, error) {
			return approve(s, jobs)
		}
	}

	summary, err := d.RunCycle(ctx)
	if err != nil {
		s.logger.Fatal("run failed", zap.Error(err))
	}

	writeSummary(s, summary, cmd.Flag("xlsx").Value.String())
}

func writeSummary(s *session, summary *report.Summary, xlsx string) {
	if err := summary.WriteText(os.Stdout); err != nil {
		s.logger.Error("writing summary", zap.Error(err))
	}

	if xlsx == "" {
		return
	}
	if err := report.WriteWorkbook(xlsx, summary); err != nil {
		s.logger.Error("writing spreadsheet", zap.Error(err), zap.String("filename", xlsx))
		return
	}
	s.logger.Info("spreadsheet written", zap.String("filename", xlsx))
}

// approve asks the user what to do with the filtered jobs.
func approve(s *session, jobs *boards.Jobs) (*boards.Jobs, error) {
	for {
		s.logger.Info("current list of jobs", zap.Int("count", jobs.Len()))

		_, action, err := prompt.Run()
		if err != nil {
			return nil, err
		}

		selected, err := handleAction(action, s, jobs)
		switch {
		case errors.Is(err, errSkip):
			return nil, nil
		case err != nil:
			return nil, err
		case selected != nil:
			return selected, nil
		}
	}
}

func handleAction(action string, s *session, jobs *boards.Jobs) (*boards.Jobs, error) {
	switch action {
	case PromptYes:
		return jobs, nil
	case PromptNo:
		s.logger.Info("skipping applications", zap.String("reason", "got no from prompt"))
		return nil, errSkip
	case PromptManualApply:
		return manualSelect(s, jobs)
	case PromptReportByPlatforms:
		pretty, _ := json.MarshalIndent(jobs.ReportByPlatform(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("jobs count", jobs.Len()))
		return nil, nil
	case PromptJobsToFile:
		filename, err := jobs.DumpToTmpFile()
		if err != nil {
			return nil, fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid action: %s", action)
	}
}

// manualSelect lets the user pick jobs one by one. Back discards the
// selection, done returns it.
func manualSelect(s *session, jobs *boards.Jobs) (*boards.Jobs, error) {
	selected := boards.NewJobs()
	excludeFile := viper.GetString("exclude-file")

	for {
		items := make([]string, 0, jobs.Len()+3)
		for _, job := range jobs.Items {
			items = append(items, jobLabel(job.ID, job.Title, job.Company, job.Score(), job.URL))
		}

		if excludeFile != "" && jobs.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}
		if selected.Len() > 0 {
			items = append(items, PromptDone)
		}

		jobPrompt := promptui.Select{
			Label: fmt.Sprintf("Choose a job and press ENTER (%d selected)", selected.Len()),
			Items: append(items, PromptBack),
			Size:  10,
		}

		_, choice, err := jobPrompt.Run()
		if err != nil {
			return nil, err
		}

		switch choice {
		case PromptBack:
			return nil, nil
		case PromptDone:
			return selected, nil
		case PromptAppendToExcludeFile:
			excluded, err := boards.GetExcludedJobsFromFile(excludeFile)
			if err != nil {
				return nil, err
			}

			excluded.Append(jobs.ToExcluded(boards.ExcludeActorUser, "manual"))

			if err := excluded.ToFile(excludeFile); err != nil {
				return nil, err
			}

			s.logger.Info("appended to exclude file", zap.String("filename", excludeFile))

			jobs.Exclude(boards.JobIDField, excluded.JobIDs())
		default:
			id := strings.Split(choice, " ")[0]

			job := jobs.FindByID(id)
			if job == nil {
				return nil, fmt.Errorf("there is no such job id %s", id)
			}

			selected.Items = append(selected.Items, job)
			jobs.Exclude(boards.JobIDField, []string{id})
		}
	}
}

func jobLabel(id, title, company string, score float64, url string) string {
	return fmt.Sprintf("%s %s / %s / %.1f%% / %s", id, title, company, score, url)
}
