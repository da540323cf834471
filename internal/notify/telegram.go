// Package notify tells staff about new placement-test bookings.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/example/englishschool/internal/placement"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram posts a message to the handler chat for every reservation.
type Telegram struct {
	bot     sender
	chatID  int64
	baseURL string
	logger  *zap.Logger
}

func NewTelegram(token string, chatID int64, baseURL string, logger *zap.Logger) (*Telegram, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

func (t *Telegram) ReservationCreated(ctx context.Context, r placement.Reservation) error {
	msg, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      reservationText(r, t.baseURL),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	t.logger.Debug("handler notified", zap.Int64("reservation_id", r.ID), zap.Int("message_id", msg.ID))
	return nil
}

func reservationText(r placement.Reservation, baseURL string) string {
	var sb strings.Builder
	sb.WriteString("<b>New placement test booking</b>\n")
	fmt.Fprintf(&sb, "Name: %s\n", html.EscapeString(r.FullName))
	fmt.Fprintf(&sb, "Phone: %s\n", html.EscapeString(r.Phone))
	fmt.Fprintf(&sb, "Level: %s\n", html.EscapeString(string(r.Level)))
	fmt.Fprintf(&sb, "When: %s %s (%s)\n", r.Date.Format(placement.DateLayout), r.Time, r.Date.Weekday())
	if baseURL != "" {
		fmt.Fprintf(&sb, "%s/level-requests", baseURL)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Nop drops notifications.
type Nop struct{}

func (Nop) ReservationCreated(context.Context, placement.Reservation) error { return nil }
