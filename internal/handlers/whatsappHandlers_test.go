package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"linkstash/internal/chat"
	"linkstash/internal/services"
)

type waSentMessage struct {
	chatID string
	text   string
}

type fakeWhatsAppSender struct {
	sent []waSentMessage
	err  error
}

func (f *fakeWhatsAppSender) Send(ctx context.Context, chatID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, waSentMessage{chatID: chatID, text: text})
	return nil
}

func newWhatsAppHandler(linker *fakeLinker, store *fakeChatStore, sender *fakeWhatsAppSender) *WhatsAppWebhookHandler {
	return NewWhatsAppWebhookHandler(linker, chat.NewExecutor(store), sender)
}

func postWhatsApp(h *WhatsAppWebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.HandleWebhook(rr, req)
	return rr
}

func whatsAppBody(from, chatID, text string) string {
	return `{"messages":[{"from":` + jsonString(from) + `,"chatId":` + jsonString(chatID) + `,"text":{"body":` + jsonString(text) + `}}]}`
}

func TestWhatsAppWebhookMalformedPayload(t *testing.T) {
	h := newWhatsAppHandler(&fakeLinker{}, &fakeChatStore{}, &fakeWhatsAppSender{})

	rr := postWhatsApp(h, "[broken")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestWhatsAppWebhookEmptyBatch(t *testing.T) {
	linker := &fakeLinker{}
	sender := &fakeWhatsAppSender{}
	h := newWhatsAppHandler(linker, &fakeChatStore{}, sender)

	rr := postWhatsApp(h, `{"messages":[]}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"No messages to process"}`, rr.Body.String())
	assert.Empty(t, sender.sent)
	assert.Empty(t, linker.resolvedPhone)
}

func TestWhatsAppWebhookEmptyTextAcknowledged(t *testing.T) {
	linker := &fakeLinker{}
	sender := &fakeWhatsAppSender{}
	h := newWhatsAppHandler(linker, &fakeChatStore{}, sender)

	rr := postWhatsApp(h, whatsAppBody("15551234567", "15551234567@s.whatsapp.net", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, sender.sent)
	assert.Empty(t, linker.resolvedPhone)
}

func TestWhatsAppWebhookUnlinkedSender(t *testing.T) {
	linker := &fakeLinker{err: services.ErrNotLinked}
	store := &fakeChatStore{}
	sender := &fakeWhatsAppSender{}
	h := newWhatsAppHandler(linker, store, sender)

	rr := postWhatsApp(h, whatsAppBody("15551234567", "15551234567@s.whatsapp.net", "reading list"))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "❌ Phone number not linked. Please link your WhatsApp in the web app settings first.", sender.sent[0].text)
	assert.Equal(t, "15551234567@s.whatsapp.net", sender.sent[0].chatID)
	assert.Equal(t, 0, store.addCalls)
}

func TestWhatsAppWebhookChatIDFallsBackToFrom(t *testing.T) {
	linker := &fakeLinker{userID: primitive.NewObjectID()}
	sender := &fakeWhatsAppSender{}
	h := newWhatsAppHandler(linker, &fakeChatStore{}, sender)

	rr := postWhatsApp(h, whatsAppBody("15551234567", "", "show all"))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "15551234567", sender.sent[0].chatID)
}

func TestWhatsAppWebhookUnrecognizedGetsHelp(t *testing.T) {
	linker := &fakeLinker{userID: primitive.NewObjectID()}
	sender := &fakeWhatsAppSender{}
	h := newWhatsAppHandler(linker, &fakeChatStore{}, sender)

	rr := postWhatsApp(h, whatsAppBody("15551234567", "", "hello there"))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, chat.HelpMessage, sender.sent[0].text)
}

func TestWhatsAppWebhookStoreFailureStaysSuccess(t *testing.T) {
	linker := &fakeLinker{userID: primitive.NewObjectID()}
	store := &fakeChatStore{err: errors.New("no reachable servers")}
	sender := &fakeWhatsAppSender{}
	h := newWhatsAppHandler(linker, store, sender)

	rr := postWhatsApp(h, whatsAppBody("15551234567", "", "search golang"))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "❌ Error searching bookmarks")
}

func TestWhatsAppWebhookSendFailure(t *testing.T) {
	linker := &fakeLinker{userID: primitive.NewObjectID()}
	sender := &fakeWhatsAppSender{err: errors.New("whapi returned 503")}
	h := newWhatsAppHandler(linker, &fakeChatStore{}, sender)

	rr := postWhatsApp(h, whatsAppBody("15551234567", "", "reading list"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
