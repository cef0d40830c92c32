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

type WhatsAppSender struct {
	cfg    *config.Config
	client *http.Client
}

func NewWhatsAppSender(cfg *config.Config) *WhatsAppSender {
	return &WhatsAppSender{cfg: cfg, client: http.DefaultClient}
}

type whatsAppTextMessageRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Send posts text to the provider's text-message endpoint, bearer-token
// authenticated. A non-2xx response is a hard failure for the request.
func (s *WhatsAppSender) Send(ctx context.Context, chatID, text string) error {
	token, err := s.cfg.RequireWhapiToken()
	if err != nil {
		return err
	}

	body, err := json.Marshal(whatsAppTextMessageRequest{To: chatID, Body: text})
	if err != nil {
		return fmt.Errorf("failed to encode whatsapp message: %w", err)
	}

	url := s.cfg.WhapiAPIBase + "/messages/text"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		utils.ChatMessagesSentTotal.WithLabelValues("whatsapp", "error").Inc()
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		utils.ChatMessagesSentTotal.WithLabelValues("whatsapp", "error").Inc()
		log.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("Whapi error")
		return fmt.Errorf("failed to send WhatsApp message: %s", string(respBody))
	}

	utils.ChatMessagesSentTotal.WithLabelValues("whatsapp", "success").Inc()
	log.Debug().Str("chat_id", chatID).Msg("WhatsApp message sent successfully")
	return nil
}
