package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/matching"
)

const (
	summarySheet      = "Summary"
	applicationsSheet = "Applications"
)

var applicationColumns = []string{
	"Title", "Company", "Platform", "Overall %", "Skills %", "Technology %",
	"Experience %", "Education %", "Salary", "Location", "URL", "Missing Skills", "AI Score",
}

// WriteWorkbook saves the summary as an .xlsx file with a Summary sheet and
// one row per applied job on the Applications sheet.
func WriteWorkbook(path string, s *Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(applicationsSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := writeSummarySheet(f, s, headerStyle); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeApplicationsSheet(f, s.Applied, headerStyle); err != nil {
		return fmt.Errorf("applications sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s *Summary, headerStyle int) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		return err
	}

	rows := [][]any{
		{"Run ID", s.RunID},
		{"Started", s.StartedAt.UTC().Format(time.DateTime)},
		{"Finished", s.FinishedAt.UTC().Format(time.DateTime)},
		{"Minimum Match %", s.MinMatch},
		{"Jobs Found", s.JobsFound},
		{"Applications Sent", len(s.Applied)},
		{"Applications Failed", s.Failed},
		{"Average Match %", round1(s.AverageMatch)},
		{"Highest Match %", round1(s.HighestMatch)},
		{"Lowest Match %", round1(s.LowestMatch)},
		{"Success Rate %", round1(s.SuccessRate())},
		{},
		{"Platform", "Jobs"},
	}
	for _, p := range s.Platforms {
		rows = append(rows, []any{p.Name, p.Jobs})
	}

	if err := f.SetCellValue(summarySheet, "A1", "Job Application Run"); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func writeApplicationsSheet(f *excelize.File, jobs []*matching.JobRecord, headerStyle int) error {
	header := make([]any, len(applicationColumns))
	for i, c := range applicationColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(applicationsSheet, "A1", &header); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(applicationColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(applicationsSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, job := range jobs {
		var missing []string
		if job.Match != nil {
			missing = job.Match.Missing[matching.CategorySkills]
		}

		var aiScore any = ""
		if job.AI != nil && job.AI.Error == "" {
			aiScore = job.AI.Score
		}

		row := []any{
			job.Title,
			job.Company,
			job.Platform,
			round1(job.Score()),
			round1(job.Match.Component(matching.CategorySkills)),
			round1(job.Match.Component(matching.CategoryTechnology)),
			round1(job.Match.Component(matching.CategoryExperience)),
			round1(job.Match.Component(matching.CategoryEducation)),
			boards.FormatSalary(job.SalaryMin, job.SalaryMax),
			job.Location,
			job.URL,
			strings.Join(missing, ", "),
			aiScore,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(applicationsSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(applicationsSheet, "A", "C", 28)
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
