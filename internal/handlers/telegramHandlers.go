package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"linkstash/internal/chat"
	"linkstash/internal/config"
	"linkstash/internal/services"
	"linkstash/internal/utils"
)

// IdentityLinker resolves an external chat identity to an account id.
// services.UserService satisfies it.
type IdentityLinker interface {
	ResolveTelegram(ctx context.Context, telegramID string) (primitive.ObjectID, error)
	ResolveWhatsApp(ctx context.Context, phoneNumber string) (primitive.ObjectID, error)
}

// TelegramMessageSender posts a reply to a Telegram chat.
type TelegramMessageSender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type telegramUpdate struct {
	Message *struct {
		From struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

type TelegramWebhookHandler struct {
	linker   IdentityLinker
	executor *chat.Executor
	relay    services.ChatRelay
	sender   TelegramMessageSender
	cfg      *config.Config
}

func NewTelegramWebhookHandler(linker IdentityLinker, executor *chat.Executor, relay services.ChatRelay, sender TelegramMessageSender, cfg *config.Config) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		linker:   linker,
		executor: executor,
		relay:    relay,
		sender:   sender,
		cfg:      cfg,
	}
}

// HandleWebhook processes one Telegram update. In-chat problems (unlinked
// sender, malformed command, store failure) are answered via the chat reply
// with HTTP 200; only transport-level failures produce HTTP 500, letting the
// platform redeliver.
func (h *TelegramWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Error().Err(err).Msg("Error decoding Telegram webhook payload")
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Updates without text (edits, stickers, joins) are acknowledged and
	// dropped so Telegram does not retry them.
	if update.Message == nil || update.Message.Text == "" {
		utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	ctx := r.Context()
	telegramUserID := strconv.FormatInt(update.Message.From.ID, 10)
	chatID := update.Message.Chat.ID
	text := update.Message.Text

	username := update.Message.From.Username
	if username == "" {
		username = update.Message.From.FirstName
	}
	if username == "" {
		username = "User"
	}

	log.Debug().Str("telegram_id", telegramUserID).Int64("chat_id", chatID).Msg("Received Telegram message")

	userID, err := h.linker.ResolveTelegram(ctx, telegramUserID)
	if err != nil {
		if errors.Is(err, services.ErrNotLinked) {
			if err := h.sender.Send(ctx, chatID, h.linkingPrompt(telegramUserID, username)); err != nil {
				log.Error().Err(err).Int64("chat_id", chatID).Msg("Error sending linking prompt")
				utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		log.Error().Err(err).Str("telegram_id", telegramUserID).Msg("Error resolving Telegram identity")
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reply, err := h.buildReply(ctx, text, username, userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.sender.Send(ctx, chatID, reply); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Error sending Telegram reply")
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *TelegramWebhookHandler) buildReply(ctx context.Context, text, username string, userID primitive.ObjectID) (string, error) {
	// /start is special-cased to a greeting before generic parsing.
	if text == "/start" {
		utils.ChatCommandsTotal.WithLabelValues("telegram", "start").Inc()
		return fmt.Sprintf("Hello %s! 👋\n\nI'm your AI assistant powered by Gemini. Ask me anything!", username), nil
	}

	cmd := chat.Parse(text)
	utils.ChatCommandsTotal.WithLabelValues("telegram", string(cmd.Kind)).Inc()

	// Free text that is not a recognized command phrase goes to the
	// generative model instead of the help message.
	if cmd.Kind == chat.KindUnrecognized {
		reply, err := h.relay.Complete(ctx, text)
		if err != nil {
			log.Error().Err(err).Msg("Error relaying message to AI")
			return "", err
		}
		return reply, nil
	}

	return h.executor.Execute(ctx, cmd, userID), nil
}

func (h *TelegramWebhookHandler) linkingPrompt(telegramUserID, username string) string {
	loginURL := fmt.Sprintf("%s/auth?telegram_id=%s&username=%s",
		h.cfg.AppBaseURL, telegramUserID, url.QueryEscape(username))
	return "👋 Welcome! To use this bot, please link your account:\n\n" +
		loginURL +
		"\n\nClick the link above to login or create an account."
}
