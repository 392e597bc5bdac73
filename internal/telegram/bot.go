package telegram

import (
	"fmt"
	"strings"
	"time"

	"go-job-extractor/internal/models"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxErrorsShown caps the error lines included in one summary message.
const maxErrorsShown = 5

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "init telegram bot")
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// SendSummary posts the run summary to the configured chat.
func (b *Bot) SendSummary(summary models.SessionSummary) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatSummary(summary))
	msg.ParseMode = "MarkdownV2"
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrap(err, "send telegram summary")
	}
	return nil
}

// FormatSummary renders a summary as a MarkdownV2 message.
func FormatSummary(s models.SessionSummary) string {
	icon := "✅"
	if s.Status == models.RunAborted {
		icon = "💥"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *Scrape %s*\n", icon, escapeMarkdown(string(s.Status)))
	fmt.Fprintf(&b, "📋 Attempted: %d\n", s.TotalJobs)
	fmt.Fprintf(&b, "💾 Saved: %d\n", s.SuccessfulJobs)
	fmt.Fprintf(&b, "⏭️ Skipped: %d\n", s.SkippedJobs)
	fmt.Fprintf(&b, "❌ Failed: %d\n", s.FailedJobs)
	fmt.Fprintf(&b, "⏱️ %s\n", escapeMarkdown(s.EndTime.Sub(s.StartTime).Round(time.Second).String()))

	for i, e := range s.Errors {
		if i == maxErrorsShown {
			fmt.Fprintf(&b, "… and %d more\n", len(s.Errors)-maxErrorsShown)
			break
		}
		where := "run"
		if e.SlotIndex > 0 {
			where = fmt.Sprintf("job %d", e.SlotIndex)
		}
		fmt.Fprintf(&b, "⚠️ %s: %s\n", escapeMarkdown(where), escapeMarkdown(e.Error))
	}
	return b.String()
}
