package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/matching"
)

var profileCmd = &cobra.Command{
	Use:   "profile [resume]",
	Short: "Show what is extracted from a resume",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		profile(args)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

type profileView struct {
	Skills          []string         `json:"skills"`
	Technologies    []string         `json:"technologies"`
	ExperienceYears int              `json:"experience_years"`
	Education       []string         `json:"education"`
	Contact         matching.Contact `json:"contact"`
}

func profile(args []string) {
	log := newLogger(nil)

	path := viper.GetString("resume")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		log.Fatal("resume path is required", zap.String("hint", "pass it as an argument or set resume in the config"))
	}

	resume, err := loadResume(context.Background(), path, log)
	if err != nil {
		log.Fatal("reading resume", zap.Error(err), zap.String("path", path))
	}

	p := resume.Profile
	pretty, _ := json.MarshalIndent(profileView{
		Skills:          p.SkillList(),
		Technologies:    p.TechnologyList(),
		ExperienceYears: p.ExperienceYears,
		Education:       p.Education,
		Contact:         p.Contact,
	}, "", "  ")
	fmt.Println(string(pretty))
}
