package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/ai"
	"github.com/spigell/jobbot/internal/ai/gemini"
	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/driver"
	"github.com/spigell/jobbot/internal/filtering"
	"github.com/spigell/jobbot/internal/logger"
	"github.com/spigell/jobbot/internal/matching"
	"github.com/spigell/jobbot/internal/notify"
	"github.com/spigell/jobbot/internal/resume"
	"github.com/spigell/jobbot/internal/secrets"
	"github.com/spigell/jobbot/internal/tracker"
)

// session is everything a command needs to search and apply.
type session struct {
	config  *Config
	logger  *zap.Logger
	resume  *ai.Resume
	scorer  *matching.Scorer
	store   *tracker.Store
	boards  []boards.Board
	notify  notify.Notifier
	filters *filtering.Pipeline
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("closing tracker", zap.Error(err))
		}
	}
	s.logger.Sync()
}

func (s *session) newDriver() *driver.Driver {
	var store driver.Tracker
	if s.store != nil {
		store = s.store
	}
	return driver.New(s.boards, s.filters, store, s.notify, s.resume.Profile, driver.Options{
		MaxApplications: s.config.Apply.MaxApplications,
		MinMatch:        s.config.Match.MinScore,
		Delay:           s.config.Apply.Delay,
		ApplicationsLog: s.config.Apply.Log,
	}, s.logger)
}

func newLogger(config *Config) *zap.Logger {
	opts := logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")}
	if config != nil {
		opts.File = config.LogFile
	}

	l, err := logger.New(opts)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// newSession loads the config and the resume and builds every component. The
// tracker is opened only when withTracker is set.
func newSession(ctx context.Context, cmd *cobra.Command, withTracker bool) *session {
	config, err := getConfig()
	if err != nil {
		newLogger(nil).Fatal("getting a config", zap.Error(err))
	}

	s := &session{config: config, logger: newLogger(config)}
	s.logger.Info("starting the jobbot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	s.logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	s.resume, err = loadResume(ctx, config.Resume, s.logger)
	if err != nil {
		s.logger.Fatal("reading resume", zap.Error(err), zap.String("path", config.Resume))
	}

	s.scorer, err = newScorer(config.Match)
	if err != nil {
		s.logger.Fatal("building scorer", zap.Error(err))
	}

	if withTracker {
		s.store, err = tracker.Open(ctx, config.Database)
		if err != nil {
			s.logger.Fatal("opening tracker", zap.Error(err), zap.String("database", config.Database))
		}
	}

	s.boards, err = buildBoards(config, s.logger)
	if err != nil {
		s.logger.Fatal("building boards", zap.Error(err))
	}

	s.notify = buildNotifier(config.Telegram, s.logger)
	s.filters = prepareFilters(ctx, cmd, s)
	for _, status := range s.filters.Describe() {
		s.logger.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason), zap.Any("details", status.Details))
	}

	return s
}

func loadResume(ctx context.Context, path string, log *zap.Logger) (*ai.Resume, error) {
	text, err := resume.ReadText(ctx, path)
	if errors.Is(err, resume.ErrEmpty) {
		log.Warn("resume has no text, all text based scores will be zero", zap.String("path", path))
	} else if err != nil {
		return nil, err
	}

	profile := matching.ExtractResumeProfile(text)
	log.Info("resume profile extracted",
		zap.Int("skills", profile.Skills.Cardinality()),
		zap.Int("experience_years", profile.ExperienceYears),
		zap.Int("education", len(profile.Education)),
	)

	return &ai.Resume{Text: text, Profile: profile}, nil
}

func newScorer(cfg MatchConfig) (*matching.Scorer, error) {
	weights := matching.DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}

	var opts []matching.Option
	if cfg.EducationPartialCredit != nil {
		opts = append(opts, matching.WithEducationPartialCredit(*cfg.EducationPartialCredit))
	}

	return matching.NewScorer(matching.DefaultVocabulary(), weights, opts...)
}

func buildBoards(config *Config, log *zap.Logger) ([]boards.Board, error) {
	client := boards.NewClient(log)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	templates := boards.DefaultTemplates()
	if config.Templates != "" {
		loaded, err := boards.LoadTemplates(config.Templates)
		if err != nil {
			return nil, err
		}
		templates = loaded
	}

	var result []boards.Board
	if feed := config.Feeds.RemoteOK; feed.Enabled && wanted(config.Platforms, boards.PlatformRemoteOK) {
		result = append(result, boards.NewRemoteOK(client, feed.Tags, feed.Limit))
	}
	if feed := config.Feeds.WeWorkRemotely; feed.Enabled && wanted(config.Platforms, boards.PlatformWeWorkRemotely) {
		result = append(result, boards.NewWeWorkRemotely(client, feed.Tags, feed.Limit))
		// the live feed replaces the simulated listings
		delete(templates, boards.PlatformWeWorkRemotely)
	}
	result = append(result, boards.TemplateBoards(boards.SelectTemplates(templates, config.Platforms))...)

	if len(result) == 0 {
		return nil, fmt.Errorf("no boards left for platforms %v", config.Platforms)
	}
	return result, nil
}

func wanted(platforms []string, name string) bool {
	if len(platforms) == 0 {
		return true
	}
	for _, p := range platforms {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return true
		}
	}
	return false
}

func buildNotifier(cfg *TelegramConfig, log *zap.Logger) notify.Notifier {
	if cfg == nil || !cfg.Enabled {
		return notify.Nop{}
	}

	token, err := secrets.Load(secrets.Source{
		Name: "telegram bot token",
		File: cfg.TokenFile,
		Env:  envPrefix + "_TELEGRAM_TOKEN",
	})
	if err != nil {
		log.Warn("telegram notifications disabled", zap.Error(err),
			zap.String("hint", "set telegram.token-file or "+envPrefix+"_TELEGRAM_TOKEN"))
		return notify.Nop{}
	}

	tg, err := notify.NewTelegram(token, cfg.ChatID, log)
	if err != nil {
		log.Warn("telegram notifications disabled", zap.Error(err))
		return notify.Nop{}
	}
	return tg
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, s *session) *filtering.Pipeline {
	config := s.config

	aiFilter, err := prepareAIFilter(ctx, config.AI, s.resume, config.ExcludeFile, s.logger)
	if err != nil {
		s.logger.Warn("skipping AI filter", zap.Error(err))
		aiFilter = filtering.NewAIFit(nil, s.resume, filtering.AIFitOptions{}, s.logger)
	}

	var history filtering.AppliedHistory
	if s.store != nil {
		history = s.store
	}

	steps := []filtering.Filter{
		filtering.NewAppliedHistory(history, flagSet(cmd, "do-not-exclude-applied"), s.logger),
		filtering.NewCompanies(config.Apply.Exclude.Companies, s.logger),
		filtering.NewExcludeFile(config.ExcludeFile, s.logger),
		filtering.NewMinSalary(config.Apply.MinSalary, s.logger),
		filtering.NewMatchScore(s.scorer, s.resume.Profile, config.Match.MinScore, s.logger),
		aiFilter,
	}

	if history == nil {
		filtering.DisableByName(steps, "applied_history", "tracker is not opened")
	}

	return filtering.New(steps, s.logger)
}

func prepareAIFilter(ctx context.Context, config *AIConfig, resume *ai.Resume, excludeFile string, log *zap.Logger) (filtering.Filter, error) {
	if config == nil || !config.Enabled {
		return filtering.NewAIFit(nil, resume, filtering.AIFitOptions{}, log), nil
	}

	if config.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai filter is enabled")
	}

	matcher, err := newAIMatcher(ctx, config, log)
	if err != nil {
		return nil, fmt.Errorf("building ai matcher: %w", err)
	}

	return filtering.NewAIFit(matcher, resume, filtering.AIFitOptions{
		Provider:        "gemini",
		Model:           config.Gemini.Model,
		MinimumFitScore: config.MinimumFitScore,
		ExcludeFile:     excludeFile,
	}, log), nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Matcher, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithFields(logger.WithAI(log, "gemini", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	matcher := gemini.NewMatcher(generator, max(cfg.MinimumFitScore, 0), cfg.Gemini.MaxLogLength, log)
	matcher.SetPromptOverrides(cfg.Gemini.Prompt)

	return matcher, nil
}

func flagSet(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	flag := cmd.Flags().Lookup(name)
	return flag != nil && strings.EqualFold(flag.Value.String(), "true")
}
