package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"linkstash/internal/config"
)

// FallbackReply is returned when the model produces no usable text.
const FallbackReply = "Sorry, I could not generate a response."

// ChatRelay forwards unrecognized free text to a generative model and
// returns its reply. Used by the Telegram webhook path only.
type ChatRelay interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type geminiRelay struct {
	cfg *config.Config
}

func NewChatRelay(cfg *config.Config) ChatRelay {
	return &geminiRelay{cfg: cfg}
}

func (r *geminiRelay) Complete(ctx context.Context, prompt string) (string, error) {
	apiKey, err := r.cfg.RequireGeminiKey()
	if err != nil {
		return "", err
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel("gemini-2.0-flash"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Google AI LLM")
		return "", err
	}

	// Generation errors (quota, safety blocks, bad requests) degrade to the
	// fallback reply so the webhook still answers in chat.
	reply, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(1000))
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate reply from LLM, using fallback")
		return FallbackReply, nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		log.Warn().Msg("LLM returned an empty reply, using fallback")
		return FallbackReply, nil
	}

	return reply, nil
}
