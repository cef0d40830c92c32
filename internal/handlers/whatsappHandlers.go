package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"linkstash/internal/chat"
	"linkstash/internal/services"
	"linkstash/internal/utils"
)

// WhatsAppMessageSender posts a reply to a WhatsApp chat.
type WhatsAppMessageSender interface {
	Send(ctx context.Context, chatID, text string) error
}

type whatsAppPayload struct {
	Messages []struct {
		From string `json:"from"`
		Text struct {
			Body string `json:"body"`
		} `json:"text"`
		ChatID string `json:"chatId"`
	} `json:"messages"`
}

type WhatsAppWebhookHandler struct {
	linker   IdentityLinker
	executor *chat.Executor
	sender   WhatsAppMessageSender
}

func NewWhatsAppWebhookHandler(linker IdentityLinker, executor *chat.Executor, sender WhatsAppMessageSender) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{
		linker:   linker,
		executor: executor,
		sender:   sender,
	}
}

// HandleWebhook processes one Whapi delivery. Unlike the Telegram path there
// is no AI fallback: unrecognized text gets the command reference.
func (h *WhatsAppWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload whatsAppPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Error decoding WhatsApp webhook payload")
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if len(payload.Messages) == 0 {
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "No messages to process"})
		return
	}

	ctx := r.Context()
	message := payload.Messages[0]
	from := message.From
	text := message.Text.Body
	chatID := message.ChatID
	if chatID == "" {
		chatID = from
	}

	log.Debug().Str("from", from).Str("text", text).Msg("Processing WhatsApp message")

	// Empty text is acknowledged but not dispatched.
	if text == "" {
		utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	userID, err := h.linker.ResolveWhatsApp(ctx, from)
	if err != nil {
		if errors.Is(err, services.ErrNotLinked) {
			prompt := "❌ Phone number not linked. Please link your WhatsApp in the web app settings first."
			if err := h.sender.Send(ctx, chatID, prompt); err != nil {
				log.Error().Err(err).Str("chat_id", chatID).Msg("Error sending linking prompt")
				utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		log.Error().Err(err).Str("from", from).Msg("Error resolving WhatsApp identity")
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cmd := chat.Parse(text)
	utils.ChatCommandsTotal.WithLabelValues("whatsapp", string(cmd.Kind)).Inc()

	reply := h.executor.Execute(ctx, cmd, userID)

	if err := h.sender.Send(ctx, chatID, reply); err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("Error sending WhatsApp reply")
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
