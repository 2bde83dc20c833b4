package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"evmeri/internal/models"
)

// Sender is the subset of the bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts new-ticket notices to the admin chat.
type Telegram struct {
	bot    Sender
	chatID int64
	lg     *zap.SugaredLogger
}

// NewTelegramBot authorizes the bot once; the returned API is shared by
// every notifier built from it.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	bot.Debug = false
	return bot, nil
}

func NewTelegram(bot Sender, chatID int64, lg *zap.SugaredLogger) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, lg: lg}
}

func (t *Telegram) TicketCreated(ctx context.Context, tk *models.SupportTicket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, TicketText(tk))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send ticket notice: %w", err)
	}
	t.lg.Debugw("ticket notice sent", "ticket_id", tk.ID, "chat_id", t.chatID)
	return nil
}

func TicketText(tk *models.SupportTicket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New support ticket #%d: %s\n\n", tk.ID, tk.Subject)
	fmt.Fprintf(&b, "From: %s\n", tk.Email)
	fmt.Fprintf(&b, "Priority: %s\n", tk.Priority.Display())
	if tk.PhoneNumber != nil {
		fmt.Fprintf(&b, "Phone: %s\n", *tk.PhoneNumber)
	}
	b.WriteString("\n")
	b.WriteString(tk.Description)
	return b.String()
}

// Nop drops notifications when no bot is configured.
type Nop struct{}

func (Nop) TicketCreated(context.Context, *models.SupportTicket) error { return nil }
