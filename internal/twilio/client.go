// Package twilio sends outbound WhatsApp messages through the Twilio
// Messages API. Delivery faults never escape as errors: every call returns
// a SendResult so callers can log and move on.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"barber-bot/internal/metrics"
	"barber-bot/internal/phone"
)

const formContentType = "application/x-www-form-urlencoded"

// Client provides access to the Twilio Messages API.
type Client struct {
	logger     *slog.Logger
	baseURL    string
	accountSID string
	authToken  string
	from       string
	http       *http.Client
	metrics    *metrics.Metrics
}

// Config holds Twilio client configuration.
type Config struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
}

// SendResult reports the outcome of a delivery attempt.
type SendResult struct {
	Success    bool
	MessageSID string
	Error      string
}

// New creates a new Twilio client. Missing credentials are tolerated; Send
// then short-circuits to a failure result instead of calling out.
func New(cfg Config, logger *slog.Logger, metricRegistry *metrics.Metrics) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.twilio.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		logger:     logger.With("component", "twilio"),
		baseURL:    base,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		http:       &http.Client{Timeout: timeout},
		metrics:    metricRegistry,
	}
}

// Configured reports whether credentials and a sender number are present.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.from != ""
}

// Send delivers a plain-text WhatsApp message to the recipient. The
// recipient may be raw or canonical; it is normalized to the
// whatsapp:+E164 form before sending.
func (c *Client) Send(ctx context.Context, to, body string) SendResult {
	if !c.Configured() {
		return c.failure("twilio is not configured")
	}
	if strings.TrimSpace(to) == "" {
		return c.failure("recipient number is empty")
	}
	if strings.TrimSpace(body) == "" {
		return c.failure("message body is empty")
	}

	recipient := phone.ForWhatsApp(to)
	if recipient == "" {
		return c.failure(fmt.Sprintf("recipient %q normalizes to nothing", to))
	}

	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", recipient)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return c.failure(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.accountSID, c.authToken)

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.TwilioRequests.WithLabelValues("error").Inc()
		}
		return c.failure(fmt.Sprintf("twilio request: %v", err))
	}
	defer res.Body.Close()

	statusLabel := fmt.Sprintf("%d", res.StatusCode)
	if c.metrics != nil {
		c.metrics.TwilioRequests.WithLabelValues(statusLabel).Inc()
		c.metrics.TwilioLatency.WithLabelValues(statusLabel).Observe(time.Since(start).Seconds())
	}

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return c.failure(fmt.Sprintf("read response: %v", err))
	}

	var payload struct {
		SID     string `json:"sid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &payload); err != nil && res.StatusCode < 400 {
		return c.failure(fmt.Sprintf("decode response: %v", err))
	}

	if res.StatusCode >= 400 {
		msg := strings.TrimSpace(payload.Message)
		if msg == "" {
			msg = strings.TrimSpace(string(bodyBytes))
		}
		return c.failure(fmt.Sprintf("twilio error: status=%d %s", res.StatusCode, msg))
	}

	c.logger.Info("message sent", "to", recipient, "sid", payload.SID)
	return SendResult{Success: true, MessageSID: payload.SID}
}

func (c *Client) failure(reason string) SendResult {
	c.logger.Error("send failed", "error", reason)
	return SendResult{Success: false, Error: reason}
}
