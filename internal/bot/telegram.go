// Package bot answers matchup, change, record, and refresh commands over
// Telegram.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLength is Telegram's limit on a single message's text.
const maxMessageLength = 4096

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

// NewTelegramBot connects with token. When chatID is set, commands from any
// other chat are ignored and notifications go to it.
func NewTelegramBot(token string, chatID int64, commands Commands) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	return &TelegramBot{
		bot:     bot,
		handler: NewHandler(commands),
		chatID:  chatID,
	}, nil
}

func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if t.chatID != 0 && update.Message.Chat.ID != t.chatID {
				slog.Warn("Ignoring command from unknown chat", "chat", update.Message.Chat.ID)
				continue
			}

			_ = t.send(t.handler.HandleCommand(ctx, update))
		case <-ctx.Done():
			return nil
		}
	}
}

// SendMessage posts text to the configured chat.
func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		return fmt.Errorf("chat ID not set")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	return t.send(msg)
}

func (t *TelegramBot) send(msg tgbotapi.MessageConfig) error {
	for _, chunk := range splitMessage(msg.Text, maxMessageLength) {
		part := msg
		part.Text = chunk
		if _, err := t.bot.Send(part); err != nil {
			slog.Error("Error sending message", "chat", msg.ChatID, "error", err)
			return err
		}
	}
	return nil
}

// splitMessage cuts text into pieces no longer than limit bytes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
