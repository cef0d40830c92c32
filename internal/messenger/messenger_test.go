package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkstash/internal/config"
)

func TestTelegramSenderSend(t *testing.T) {
	t.Run("posts chat_id, text and markdown parse mode", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &gotBody))
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		cfg := &config.Config{TelegramBotToken: "123:abc", TelegramAPIBase: srv.URL}
		s := NewTelegramSender(cfg)

		err := s.Send(context.Background(), 99, "hello *world*")

		require.NoError(t, err)
		assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
		assert.Equal(t, float64(99), gotBody["chat_id"])
		assert.Equal(t, "hello *world*", gotBody["text"])
		assert.Equal(t, "Markdown", gotBody["parse_mode"])
	})

	t.Run("non-2xx response is an error carrying the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
		}))
		defer srv.Close()

		cfg := &config.Config{TelegramBotToken: "123:abc", TelegramAPIBase: srv.URL}
		s := NewTelegramSender(cfg)

		err := s.Send(context.Background(), 99, "hi")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "chat not found")
	})

	t.Run("missing token fails before any request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		}))
		defer srv.Close()

		cfg := &config.Config{TelegramAPIBase: srv.URL}
		s := NewTelegramSender(cfg)

		err := s.Send(context.Background(), 99, "hi")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	})
}

func TestWhatsAppSenderSend(t *testing.T) {
	t.Run("posts to messages endpoint with bearer auth", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &gotBody))
			w.Write([]byte(`{"sent":true}`))
		}))
		defer srv.Close()

		cfg := &config.Config{WhapiToken: "whapi-secret", WhapiAPIBase: srv.URL}
		s := NewWhatsAppSender(cfg)

		err := s.Send(context.Background(), "15551234567@s.whatsapp.net", "hello")

		require.NoError(t, err)
		assert.Equal(t, "/messages/text", gotPath)
		assert.Equal(t, "Bearer whapi-secret", gotAuth)
		assert.Equal(t, "15551234567@s.whatsapp.net", gotBody["to"])
		assert.Equal(t, "hello", gotBody["body"])
	})

	t.Run("non-2xx response is an error carrying the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid token"}`))
		}))
		defer srv.Close()

		cfg := &config.Config{WhapiToken: "bad", WhapiAPIBase: srv.URL}
		s := NewWhatsAppSender(cfg)

		err := s.Send(context.Background(), "15551234567", "hello")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token")
	})

	t.Run("missing token fails before any request", func(t *testing.T) {
		cfg := &config.Config{WhapiAPIBase: "http://127.0.0.1:0"}
		s := NewWhatsAppSender(cfg)

		err := s.Send(context.Background(), "15551234567", "hello")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "WHAPI_API_TOKEN")
	})
}
