package config

import (
	"fmt"

	"github.com/spf13/viper"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port             int
	MongoURI         string
	JWTSecret        string
	TelegramBotToken string
	WhapiToken       string
	GeminiAPIKey     string
	AppBaseURL       string
	AllowedOrigins   string

	// Overridable endpoints, injected by messenger tests.
	TelegramAPIBase string
	WhapiAPIBase    string
}

// Load reads configuration from the environment. Only PORT has a default;
// secrets are validated lazily via the Require helpers so that a handler that
// never touches, say, the Gemini key can run without it.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("TELEGRAM_API_BASE", "https://api.telegram.org")
	v.SetDefault("WHAPI_API_BASE", "https://gate.whapi.cloud")

	cfg := &Config{
		Port:             v.GetInt("PORT"),
		MongoURI:         v.GetString("MONGO_URI"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TelegramBotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		WhapiToken:       v.GetString("WHAPI_API_TOKEN"),
		GeminiAPIKey:     v.GetString("GEMINI_API_KEY"),
		AppBaseURL:       v.GetString("APP_BASE_URL"),
		AllowedOrigins:   v.GetString("ALLOWED_ORIGINS"),
		TelegramAPIBase:  v.GetString("TELEGRAM_API_BASE"),
		WhapiAPIBase:     v.GetString("WHAPI_API_BASE"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}

	return cfg, nil
}

// RequireTelegramToken returns the bot token or an error when it is missing.
// A missing secret at the point of use is a fatal configuration error for
// that request.
func (c *Config) RequireTelegramToken() (string, error) {
	if c.TelegramBotToken == "" {
		return "", fmt.Errorf("TELEGRAM_BOT_TOKEN not configured")
	}
	return c.TelegramBotToken, nil
}

func (c *Config) RequireWhapiToken() (string, error) {
	if c.WhapiToken == "" {
		return "", fmt.Errorf("WHAPI_API_TOKEN not configured")
	}
	return c.WhapiToken, nil
}

func (c *Config) RequireGeminiKey() (string, error) {
	if c.GeminiAPIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not configured")
	}
	return c.GeminiAPIKey, nil
}
