// Package convo implements the conversation state machine between
// customers and the barbershop: chat creation on first contact, message
// tracking, barber resolution and the canned replies sent back.
package convo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"barber-bot/internal/cache"
	"barber-bot/internal/metrics"
	"barber-bot/internal/phone"
	"barber-bot/internal/repo"
)

// Engine orchestrates chat and client state around the store. Storage
// faults on the inbound path are logged and converted to degraded results
// so the webhook can always acknowledge.
type Engine struct {
	store   repo.Store
	cache   *cache.Redis
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a conversation engine. The cache may be nil.
func New(store repo.Store, redis *cache.Redis, metricRegistry *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		store:   store,
		cache:   redis,
		metrics: metricRegistry,
		logger:  logger.With("component", "convo"),
	}
}

// ProcessResult reports the chat state after an inbound message.
type ProcessResult struct {
	Chat   *repo.Chat
	Status string
	IsNew  bool
}

// RegistrationResult reports the outcome of a client ledger check.
type RegistrationResult struct {
	Exists bool
	IsNew  bool
}

// ProcessMessage handles one inbound customer message. First contact
// creates a chat in awaiting_barber; later messages only refresh the last
// message and interaction time. A chat already marked attended stays
// attended, re-engagement does not reopen it.
func (e *Engine) ProcessMessage(ctx context.Context, phoneNumber, message string) ProcessResult {
	chat, err := e.store.FindChatByPhone(ctx, phoneNumber)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		created, err := e.store.CreateChat(ctx, phoneNumber, message)
		if err != nil {
			e.fault("create_chat", err)
			return ProcessResult{Chat: nil, Status: repo.StatusNew, IsNew: true}
		}
		return ProcessResult{Chat: created, Status: repo.StatusAwaitingBarber, IsNew: true}

	case err != nil:
		e.fault("find_chat", err)
		return ProcessResult{Chat: nil, Status: repo.StatusNew, IsNew: false}
	}

	if err := e.store.UpdateChatMessage(ctx, chat.ID, message); err != nil {
		e.fault("update_chat", err)
	}

	updated, err := e.store.FindChatByPhone(ctx, phoneNumber)
	if err != nil {
		e.fault("reread_chat", err)
		return ProcessResult{Chat: nil, Status: repo.StatusNew, IsNew: false}
	}
	return ProcessResult{Chat: updated, Status: updated.Status, IsNew: false}
}

// MarkAttended transitions the latest chat for the phone number to
// attended, unconditionally of its prior status, and stamps the barber's
// text. Returns repo.ErrNotFound when no conversation exists.
func (e *Engine) MarkAttended(ctx context.Context, phoneNumber, message string) (*repo.Chat, error) {
	chat, err := e.store.FindChatByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("mark attended: %w", err)
	}

	if err := e.store.MarkChatAttended(ctx, chat.ID, message); err != nil {
		return nil, fmt.Errorf("mark attended: %w", err)
	}

	updated, err := e.store.FindChatByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("mark attended: %w", err)
	}
	return updated, nil
}

// RegisterClient ensures the phone number is present in the clients
// ledger. The check goes through the Redis cache when available. Faults
// are best-effort: an insert failure still reports IsNew so the caller's
// flow is never blocked.
func (e *Engine) RegisterClient(ctx context.Context, phoneNumber string) RegistrationResult {
	canonical := phone.Normalize(phoneNumber)

	if e.cache.IsClientKnown(ctx, canonical) {
		return RegistrationResult{Exists: true, IsNew: false}
	}

	exists, err := e.store.ClientExists(ctx, canonical)
	if err != nil {
		e.fault("client_exists", err)
	}
	if exists {
		e.cache.MarkClientKnown(ctx, canonical)
		return RegistrationResult{Exists: true, IsNew: false}
	}

	if err := e.store.InsertClient(ctx, canonical); err != nil {
		e.fault("insert_client", err)
		return RegistrationResult{Exists: false, IsNew: true}
	}
	e.cache.MarkClientKnown(ctx, canonical)
	return RegistrationResult{Exists: false, IsNew: true}
}

func (e *Engine) fault(op string, err error) {
	e.logger.Error("storage fault", "op", op, "error", err)
	if e.metrics != nil {
		e.metrics.Errors.WithLabelValues("convo").Inc()
	}
}
