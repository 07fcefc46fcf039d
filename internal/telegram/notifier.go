package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"grocerytracker/internal/domain"
	"grocerytracker/internal/events"
	"grocerytracker/internal/models"
	"grocerytracker/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	statusSuccess = "✅"
	statusError   = "❌"
)

// Notifier posts scrape summaries and exported workbooks to one chat.
type Notifier struct {
	bot    domain.TelegramSender
	chatID int64
	logger zerolog.Logger
}

// NewBot connects to the Bot API with token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return bot, nil
}

func NewNotifier(bot domain.TelegramSender, chatID int64, logger *zerolog.Logger) *Notifier {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "telegram").Logger()
	}
	return &Notifier{bot: bot, chatID: chatID, logger: l}
}

// NotifyScrape sends the summary of a finished scrape run.
func (n *Notifier) NotifyScrape(ctx context.Context, p events.ScrapePayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatScrapeSummary(p))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", n.chatID).Str("run_id", p.RunID).Msg("send scrape summary")
		return err
	}
	return nil
}

// HandleTask is the worker handler for worker.TaskNotify.
func (n *Notifier) HandleTask(ctx context.Context, task worker.Task) error {
	var p events.ScrapePayload
	if err := (&events.Event{Payload: task.Payload}).Decode(&p); err != nil {
		return worker.Permanent(fmt.Errorf("decode scrape payload: %w", err))
	}
	return n.NotifyScrape(ctx, p)
}

// SendWorkbook uploads an exported comparison workbook.
func (n *Notifier) SendWorkbook(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FilePath(path))
	doc.Caption = "📊 " + filepath.Base(path)
	if _, err := n.bot.Send(doc); err != nil {
		n.logger.Error().Err(err).Str("path", path).Msg("send workbook")
		return err
	}
	return nil
}

// FormatScrapeSummary renders a run as a Markdown message.
func FormatScrapeSummary(p events.ScrapePayload) string {
	var b strings.Builder

	icon := statusSuccess
	if len(p.Failed) > 0 {
		icon = statusError
	}
	fmt.Fprintf(&b, "%s *Price update* (%s mode)\n", icon, p.Mode)
	fmt.Fprintf(&b, "Products: %d, saved: %d\n", p.TotalProducts, p.TotalSaved)

	if len(p.Failed) > 0 {
		slugs := make([]string, 0, len(p.Failed))
		for slug := range p.Failed {
			slugs = append(slugs, slug)
		}
		sort.Slice(slugs, func(i, j int) bool { return models.StoreRank(slugs[i]) < models.StoreRank(slugs[j]) })

		b.WriteString("\nFailed stores:\n")
		for _, slug := range slugs {
			name := slug
			if s, ok := models.LookupStore(slug); ok {
				name = s.Name
			}
			fmt.Fprintf(&b, "• %s: %s\n", name, tgbotapi.EscapeText(tgbotapi.ModeMarkdown, p.Failed[slug]))
		}
	}

	if !p.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "\n_%s_", p.FinishedAt.Local().Format("Jan 2, 15:04"))
	}
	return b.String()
}
