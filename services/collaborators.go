package services

import (
	"context"
	"errors"
	"time"

	"github.com/felixzhu97/whatschat-sub002/models"
)

// Sentinel errors for the realtime layer. Everything else that bubbles out of
// a collaborator is treated as a persistence failure and surfaced to the
// initiating connection as a generic error event.
var (
	ErrMissingCredential    = errors.New("credential missing")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotParticipant       = errors.New("not authorized to send to this conversation")
)

// Connection is a live, authenticated transport session. Emit is
// fire-and-forget: the transport owns backpressure and may drop a slow
// consumer, which to the relay layer looks like the user going offline.
type Connection interface {
	ID() string
	UserID() string
	Emit(event string, data interface{})
	Close()
}

// UserDirectory is the external user store. GetUser returns (nil, nil) when
// no identity record exists.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SetOnline(ctx context.Context, userID string, online bool, lastSeen time.Time) error
	SetStatusText(ctx context.Context, userID, status string) error
	ContactIDs(ctx context.Context, userID string) ([]string, error)
}

// ConversationDirectory answers membership questions against the external
// conversation store.
type ConversationDirectory interface {
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	ParticipantIDs(ctx context.Context, conversationID string) ([]string, error)
}

// MessageRepository persists messages, read receipts and reactions.
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, messageID, userID string) error
	UpsertReaction(ctx context.Context, messageID, userID, emoji string) error
}

// StatusRepository persists ephemeral statuses.
type StatusRepository interface {
	CreateStatus(ctx context.Context, status *models.Status) error
	UserStatuses(ctx context.Context, userID string) ([]models.Status, error)
}
