package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"evmeri/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func TestTicketCreatedSendsToAdminChat(t *testing.T) {
	s := &fakeSender{}
	n := NewTelegram(s, -1001, zap.NewNop().Sugar())
	phone := "+251911000000"
	tk := &models.SupportTicket{ID: 7, Subject: "QR not scanning", Description: "Code is faded", Email: "u@example.test", Priority: models.PriorityHigh, PhoneNumber: &phone}

	if err := n.TicketCreated(context.Background(), tk); err != nil {
		t.Fatalf("TicketCreated: %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent %d messages", len(s.sent))
	}
	m := s.sent[0]
	if m.ChatID != -1001 {
		t.Errorf("chat id = %d", m.ChatID)
	}
	for _, want := range []string{"#7", "QR not scanning", "u@example.test", "High", phone, "Code is faded"} {
		if !strings.Contains(m.Text, want) {
			t.Errorf("message missing %q:\n%s", want, m.Text)
		}
	}
}

func TestTicketCreatedPropagatesSendError(t *testing.T) {
	n := NewTelegram(&fakeSender{err: errors.New("429")}, 1, zap.NewNop().Sugar())
	if err := n.TicketCreated(context.Background(), &models.SupportTicket{ID: 1}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNop(t *testing.T) {
	if err := (Nop{}).TicketCreated(context.Background(), &models.SupportTicket{}); err != nil {
		t.Fatal(err)
	}
}
