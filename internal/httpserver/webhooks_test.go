package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"barber-bot/internal/convo"
	"barber-bot/internal/repo"
	"barber-bot/internal/twilio"
	"barber-bot/migrations"
)

type sentMessage struct {
	To   string
	Body string
}

type fakeNotifier struct {
	sent []sentMessage
	fail bool
}

func (f *fakeNotifier) Send(_ context.Context, to, body string) twilio.SendResult {
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	if f.fail {
		return twilio.SendResult{Success: false, Error: "provider unreachable"}
	}
	return twilio.SendResult{Success: true, MessageSID: "SM123"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) repo.Store {
	t.Helper()
	ctx := context.Background()

	store, err := repo.NewSQLite(ctx, filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return store
}

func newTestServer(t *testing.T, store repo.Store, notifier Notifier) http.Handler {
	t.Helper()
	logger := testLogger()
	engine := convo.New(store, nil, nil, logger)

	srv := New(":0", logger, nil, Handlers{
		WhatsAppWebhook: NewWhatsAppWebhookHandler(engine, notifier, nil, logger),
		BarberResponse:  NewBarberResponseHandler(engine, notifier, nil, logger),
	}, "")
	srv.SetDependencies(Dependencies{Store: store})
	return srv.Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestInboundMissingBodyAcknowledges(t *testing.T) {
	store := newTestStore(t)
	notifier := &fakeNotifier{}
	h := newTestServer(t, store, notifier)

	rec := postJSON(t, h, "/webhook/whatsapp", map[string]string{"from": "+521234"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ok"] != true {
		t.Errorf("expected ok:true, got %v", body)
	}

	// No store mutation happened.
	if _, err := store.FindChatByPhone(context.Background(), "521234"); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("chat should not exist, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("nothing should be sent, got %v", notifier.sent)
	}
}

func TestInboundFirstContact(t *testing.T) {
	store := newTestStore(t)
	notifier := &fakeNotifier{}
	h := newTestServer(t, store, notifier)

	rec := postJSON(t, h, "/webhook/whatsapp", map[string]string{"from": "+52 55 1234 5678", "body": "Hola"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body)
	}
	if body["status"] != repo.StatusAwaitingBarber {
		t.Errorf("status = %v, want %q", body["status"], repo.StatusAwaitingBarber)
	}
	reply, _ := body["message"].(string)
	if !strings.Contains(reply, "Bienvenido") {
		t.Errorf("expected greeting reply, got %q", reply)
	}

	chat, err := store.FindChatByPhone(context.Background(), "5215512345678")
	if err != nil {
		t.Fatalf("chat should exist: %v", err)
	}
	if chat.Status != repo.StatusAwaitingBarber || chat.LastMessage != "Hola" {
		t.Errorf("unexpected chat: %+v", chat)
	}

	exists, err := store.ClientExists(context.Background(), "5215512345678")
	if err != nil || !exists {
		t.Errorf("client should be registered (exists=%v err=%v)", exists, err)
	}

	if len(notifier.sent) != 1 || notifier.sent[0].Body != reply {
		t.Errorf("reply should be delivered, got %v", notifier.sent)
	}
}

func TestInboundFormEncoded(t *testing.T) {
	store := newTestStore(t)
	h := newTestServer(t, store, &fakeNotifier{})

	form := url.Values{}
	form.Set("From", "whatsapp:+5215512345678")
	form.Set("Body", "Hola")
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, err := store.FindChatByPhone(context.Background(), "5215512345678"); err != nil {
		t.Fatalf("chat should exist: %v", err)
	}
}

func TestInboundDeliveryFailureStillAcknowledges(t *testing.T) {
	store := newTestStore(t)
	h := newTestServer(t, store, &fakeNotifier{fail: true})

	rec := postJSON(t, h, "/webhook/whatsapp", map[string]string{"from": "123", "body": "hola"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite delivery failure", rec.Code)
	}
}

func TestBarberMissingFields(t *testing.T) {
	h := newTestServer(t, newTestStore(t), &fakeNotifier{})

	rec := postJSON(t, h, "/webhook/barber-responds", map[string]string{"telefono": "123"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ok"] != false || body["error"] == nil {
		t.Errorf("expected explanatory error, got %v", body)
	}
}

func TestBarberUnknownPhone(t *testing.T) {
	h := newTestServer(t, newTestStore(t), &fakeNotifier{})

	rec := postJSON(t, h, "/webhook/barber-responds", map[string]string{"telefono": "999", "mensaje": "listo"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBarberStorageFault(t *testing.T) {
	store := newTestStore(t)
	h := newTestServer(t, store, &fakeNotifier{})
	store.Close()

	rec := postJSON(t, h, "/webhook/barber-responds", map[string]string{"telefono": "999", "mensaje": "listo"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 on storage fault", rec.Code)
	}
}

func TestEndToEndConversation(t *testing.T) {
	store := newTestStore(t)
	notifier := &fakeNotifier{}
	h := newTestServer(t, store, notifier)

	// Customer writes for the first time.
	rec := postJSON(t, h, "/webhook/whatsapp", map[string]string{"from": "+52 55 1234 5678", "body": "Hola"})
	body := decodeBody(t, rec)
	if body["status"] != repo.StatusAwaitingBarber {
		t.Fatalf("first contact status = %v", body["status"])
	}
	if reply, _ := body["message"].(string); !strings.Contains(reply, "Bienvenido") {
		t.Fatalf("first contact reply = %q", reply)
	}

	// Barber resolves the conversation.
	rec = postJSON(t, h, "/webhook/barber-responds", map[string]string{"telefono": "5215512345678", "mensaje": "Te esperamos"})
	if rec.Code != http.StatusOK {
		t.Fatalf("barber response status = %d", rec.Code)
	}
	if body = decodeBody(t, rec); body["ok"] != true {
		t.Fatalf("barber response body = %v", body)
	}

	chat, err := store.FindChatByPhone(context.Background(), "5215512345678")
	if err != nil || chat.Status != repo.StatusAttended {
		t.Fatalf("chat should be attended (err=%v chat=%+v)", err, chat)
	}

	// Customer writes again: recorded, but the chat stays attended.
	rec = postJSON(t, h, "/webhook/whatsapp", map[string]string{"from": "5215512345678", "body": "Gracias"})
	body = decodeBody(t, rec)
	if body["status"] != repo.StatusAttended {
		t.Errorf("re-engagement status = %v, want %q", body["status"], repo.StatusAttended)
	}
	if reply, _ := body["message"].(string); !strings.Contains(reply, "de nuevo") {
		t.Errorf("re-engagement reply = %q, want re-welcome", reply)
	}

	// Barber's text was forwarded to the customer.
	forwarded := false
	for _, msg := range notifier.sent {
		if msg.Body == "Te esperamos" && msg.To == "5215512345678" {
			forwarded = true
		}
	}
	if !forwarded {
		t.Errorf("barber message not forwarded, sent: %v", notifier.sent)
	}
}
