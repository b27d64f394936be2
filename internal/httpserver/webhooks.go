package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"barber-bot/internal/convo"
	"barber-bot/internal/metrics"
	"barber-bot/internal/repo"
	"barber-bot/internal/twilio"
)

// Notifier delivers outbound WhatsApp messages. Delivery is best-effort
// on both webhook paths; failures are logged, never surfaced upstream.
type Notifier interface {
	Send(ctx context.Context, to, body string) twilio.SendResult
}

// WhatsAppWebhookHandler receives inbound customer messages from the
// messaging provider. Policy: always acknowledge with 200, even on
// malformed payloads or internal faults, so the provider never retries.
type WhatsAppWebhookHandler struct {
	engine   *convo.Engine
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewWhatsAppWebhookHandler creates the inbound message handler.
func NewWhatsAppWebhookHandler(engine *convo.Engine, notifier Notifier, metricRegistry *metrics.Metrics, logger *slog.Logger) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{
		engine:   engine,
		notifier: notifier,
		metrics:  metricRegistry,
		logger:   logger.With("component", "whatsapp_webhook"),
	}
}

// ServeHTTP satisfies http.Handler.
func (h *WhatsAppWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic handling inbound message", "panic", rec)
			h.count("error")
			writeJSON(w, map[string]any{"ok": true})
		}
	}()

	from, body := parseInboundPayload(r)
	if from == "" || body == "" {
		h.logger.Warn("inbound message missing fields", "from", from)
		h.count("invalid")
		writeJSON(w, map[string]any{"ok": true})
		return
	}

	reg := h.engine.RegisterClient(r.Context(), from)
	if reg.IsNew {
		h.logger.Info("new client registered", "phone", from)
	}

	res := h.engine.ProcessMessage(r.Context(), from, body)
	reply := convo.ReplyFor(res.Status, res.IsNew)

	if h.notifier != nil {
		if sent := h.notifier.Send(r.Context(), from, reply); !sent.Success {
			h.logger.Warn("reply delivery failed", "phone", from, "error", sent.Error)
		}
	}

	if res.IsNew {
		h.count("new")
	} else {
		h.count("known")
	}

	writeJSON(w, map[string]any{
		"ok":      true,
		"message": reply,
		"status":  res.Status,
	})
}

func (h *WhatsAppWebhookHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.InboundMessages.WithLabelValues(outcome).Inc()
	}
}

// parseInboundPayload accepts both the JSON body {from, body} and the
// provider's form encoding (From/Body fields).
func parseInboundPayload(r *http.Request) (from, body string) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			From string `json:"from"`
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", ""
		}
		return strings.TrimSpace(payload.From), strings.TrimSpace(payload.Body)
	}

	if err := r.ParseForm(); err != nil {
		return "", ""
	}
	from = strings.TrimSpace(r.PostForm.Get("From"))
	if from == "" {
		from = strings.TrimSpace(r.PostForm.Get("from"))
	}
	body = strings.TrimSpace(r.PostForm.Get("Body"))
	if body == "" {
		body = strings.TrimSpace(r.PostForm.Get("body"))
	}
	return from, body
}

// BarberResponseHandler lets the barber resolve a conversation. Unlike
// the inbound path this endpoint reports accurate status codes; a human
// operator can retry.
type BarberResponseHandler struct {
	engine   *convo.Engine
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewBarberResponseHandler creates the barber responder handler.
func NewBarberResponseHandler(engine *convo.Engine, notifier Notifier, metricRegistry *metrics.Metrics, logger *slog.Logger) *BarberResponseHandler {
	return &BarberResponseHandler{
		engine:   engine,
		notifier: notifier,
		metrics:  metricRegistry,
		logger:   logger.With("component", "barber_webhook"),
	}
}

// ServeHTTP satisfies http.Handler.
func (h *BarberResponseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Telefono string `json:"telefono"`
		Mensaje  string `json:"mensaje"`
		Phone    string `json:"phone"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.count("invalid")
		writeJSONStatus(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "invalid JSON body",
		})
		return
	}

	phoneNumber := firstNonEmpty(payload.Telefono, payload.Phone)
	message := firstNonEmpty(payload.Mensaje, payload.Message)
	if phoneNumber == "" || message == "" {
		h.count("invalid")
		writeJSONStatus(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "telefono and mensaje are required",
		})
		return
	}

	chat, err := h.engine.MarkAttended(r.Context(), phoneNumber, message)
	if errors.Is(err, repo.ErrNotFound) {
		h.count("not_found")
		writeJSONStatus(w, http.StatusNotFound, map[string]any{
			"ok":    false,
			"error": "no chat found for that phone number",
		})
		return
	}
	if err != nil {
		h.logger.Error("failed marking chat attended", "error", err)
		h.count("error")
		writeJSONStatus(w, http.StatusInternalServerError, map[string]any{
			"ok":    false,
			"error": "internal error",
		})
		return
	}

	if h.notifier != nil {
		if sent := h.notifier.Send(r.Context(), chat.Phone, message); !sent.Success {
			h.logger.Warn("barber reply delivery failed", "phone", chat.Phone, "error", sent.Error)
		}
	}

	h.count("attended")
	writeJSON(w, map[string]any{"ok": true})
}

func (h *BarberResponseHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.BarberResponses.WithLabelValues(outcome).Inc()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
