package notify

import (
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/matching"
	"github.com/spigell/jobbot/internal/report"
)

// Notifier reports run events to the user.
type Notifier interface {
	ApplicationSent(job *matching.JobRecord) error
	CycleSummary(s *report.Summary) error
	Error(err error) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) ApplicationSent(*matching.JobRecord) error { return nil }
func (Nop) CycleSummary(*report.Summary) error        { return nil }
func (Nop) Error(error) error                         { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot    sender
	chatID int64
	logger *zap.Logger
}

func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("telegram bot authorized", zap.String("bot", bot.Self.UserName))

	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	t.logger.Debug("telegram message sent", zap.Int64("chat_id", t.chatID), zap.Int("length", len(text)))
	return nil
}

func (t *Telegram) ApplicationSent(job *matching.JobRecord) error {
	return t.send(applicationMessage(job))
}

func (t *Telegram) CycleSummary(s *report.Summary) error {
	return t.send(summaryMessage(s))
}

func (t *Telegram) Error(err error) error {
	return t.send(errorMessage(err))
}

func applicationMessage(job *matching.JobRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "✅ <b>Applied: %s</b>\n", esc(job.Title))
	fmt.Fprintf(&b, "🏢 %s (%s)\n", esc(job.Company), esc(job.Platform))
	fmt.Fprintf(&b, "🎯 Match: %.1f%%\n", job.Score())
	fmt.Fprintf(&b, "💰 %s\n", esc(boards.FormatSalary(job.SalaryMin, job.SalaryMax)))
	if job.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n", esc(job.Location))
	}
	if job.Match != nil {
		if missing := job.Match.Missing[matching.CategorySkills]; len(missing) > 0 {
			fmt.Fprintf(&b, "🛠 Missing: %s\n", esc(strings.Join(missing, ", ")))
		}
	}
	if job.URL != "" {
		fmt.Fprintf(&b, "🔗 <a href=\"%s\">Open listing</a>", esc(job.URL))
	}

	return strings.TrimRight(b.String(), "\n")
}

func summaryMessage(s *report.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 <b>Run %s complete</b>\n", esc(s.RunID))
	fmt.Fprintf(&b, "Jobs found: %d\n", s.JobsFound)
	fmt.Fprintf(&b, "Applications sent: %d\n", len(s.Applied))
	if s.Failed > 0 {
		fmt.Fprintf(&b, "Failed: %d\n", s.Failed)
	}
	fmt.Fprintf(&b, "Average match: %.1f%%", s.AverageMatch)

	for _, job := range s.Applied {
		fmt.Fprintf(&b, "\n• %s", esc(report.Line(job)))
	}

	return b.String()
}

func errorMessage(err error) string {
	return fmt.Sprintf("⚠️ <b>jobbot error</b>:\n%s", esc(err.Error()))
}

func esc(s string) string {
	return html.EscapeString(s)
}
