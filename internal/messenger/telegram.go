// Package messenger posts formatted replies back to the chat platforms.
// Senders do one sequential HTTP call with no retries: a failed send is a
// terminal failure for the request, and redelivery is left to the platform.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"linkstash/internal/config"
	"linkstash/internal/utils"
)

type TelegramSender struct {
	cfg    *config.Config
	client *http.Client
}

func NewTelegramSender(cfg *config.Config) *TelegramSender {
	return &TelegramSender{cfg: cfg, client: http.DefaultClient}
}

type telegramSendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts text to the bot's sendMessage endpoint. A non-2xx response is
// a hard failure, surfaced to the webhook caller as HTTP 500.
func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string) error {
	token, err := s.cfg.RequireTelegramToken()
	if err != nil {
		return err
	}

	body, err := json.Marshal(telegramSendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to encode telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.cfg.TelegramAPIBase, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		utils.ChatMessagesSentTotal.WithLabelValues("telegram", "error").Inc()
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		utils.ChatMessagesSentTotal.WithLabelValues("telegram", "error").Inc()
		log.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("Telegram API error")
		return fmt.Errorf("failed to send Telegram message: %s", string(respBody))
	}

	utils.ChatMessagesSentTotal.WithLabelValues("telegram", "success").Inc()
	log.Debug().Int64("chat_id", chatID).Msg("Telegram message sent successfully")
	return nil
}
