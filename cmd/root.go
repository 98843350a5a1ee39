package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/jobbot/internal/ai/gemini"
	"github.com/spigell/jobbot/internal/matching"
)

const (
	app       = "jobbot"
	envPrefix = "JOBBOT"
)

type Config struct {
	Resume      string          `mapstructure:"resume" validate:"required"`
	Platforms   []string        `mapstructure:"platforms"`
	Templates   string          `mapstructure:"templates"`
	UserAgent   string          `mapstructure:"user-agent"`
	Feeds       FeedsConfig     `mapstructure:"feeds"`
	Match       MatchConfig     `mapstructure:"match"`
	Apply       ApplyConfig     `mapstructure:"apply"`
	ExcludeFile string          `mapstructure:"exclude-file"`
	Database    string          `mapstructure:"database" validate:"required"`
	LogFile     string          `mapstructure:"log-file"`
	Watch       WatchConfig     `mapstructure:"watch"`
	AI          *AIConfig       `mapstructure:"ai"`
	Telegram    *TelegramConfig `mapstructure:"telegram"`
}

type FeedsConfig struct {
	RemoteOK       FeedConfig `mapstructure:"remoteok"`
	WeWorkRemotely FeedConfig `mapstructure:"weworkremotely"`
}

type FeedConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Tags    []string `mapstructure:"tags"`
	Limit   int      `mapstructure:"limit" validate:"gte=0"`
}

type MatchConfig struct {
	MinScore float64           `mapstructure:"min-score" validate:"gte=0,lte=100"`
	Weights  *matching.Weights `mapstructure:"weights"`
	// EducationPartialCredit is the education score when a stated requirement is not met.
	EducationPartialCredit *float64 `mapstructure:"education-partial-credit" validate:"omitempty,gte=0,lte=100"`
}

type ApplyConfig struct {
	MaxApplications int           `mapstructure:"max-applications" validate:"gte=0"`
	Delay           time.Duration `mapstructure:"delay" validate:"gte=0"`
	Log             string        `mapstructure:"log"`
	MinSalary       int           `mapstructure:"min-salary" validate:"gte=0"`
	Exclude         struct {
		Companies []string `mapstructure:"companies"`
	} `mapstructure:"exclude"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score" validate:"gte=0,lte=1"`
	Gemini          *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKeyFile   string                 `mapstructure:"api-key-file"`
	Model        string                 `mapstructure:"model"`
	MaxRetries   int                    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int                    `mapstructure:"max-log-length" validate:"gte=0"`
	Prompt       gemini.PromptOverrides `mapstructure:"prompt"`
}

type TelegramConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TokenFile string `mapstructure:"token-file"`
	ChatID    int64  `mapstructure:"chat-id" validate:"required_if=Enabled true"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobbot searches remote job boards, scores listings against your resume and applies to the best ones",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobbot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	// registered so env overrides reach Unmarshal
	v.SetDefault("resume", "")
	v.SetDefault("exclude-file", "")
	v.SetDefault("log-file", "")
	v.SetDefault("database", "data/applications.db")
	v.SetDefault("match.min-score", 60.0)
	v.SetDefault("apply.max-applications", 90)
	v.SetDefault("apply.delay", 5*time.Second)
	v.SetDefault("apply.log", "logs/applications.log")
	v.SetDefault("watch.interval", 5*time.Minute)
	v.SetDefault("feeds.remoteok.enabled", true)
	v.SetDefault("feeds.remoteok.limit", 100)
	v.SetDefault("feeds.weworkremotely.enabled", true)
	v.SetDefault("feeds.weworkremotely.limit", 100)
}

func initConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// version does not need a config
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without a config file only env and defaults are used.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if w := config.Match.Weights; w != nil {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: match.weights: %w", err)
		}
	}

	return &config, nil
}
