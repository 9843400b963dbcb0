package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixzhu97/whatschat-sub002/models"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

// EventRelay moves the lightweight chat events: typing indicators, read
// receipts, reactions, ephemeral statuses and user status text.
type EventRelay struct {
	registry      *PresenceRegistry
	conversations ConversationDirectory
	messages      MessageRepository
	statuses      StatusRepository
	users         UserDirectory
	statusTTL     time.Duration
	logger        *utils.Logger
}

func NewEventRelay(registry *PresenceRegistry, conversations ConversationDirectory, messages MessageRepository, statuses StatusRepository, users UserDirectory, statusTTL time.Duration, logger *utils.Logger) *EventRelay {
	return &EventRelay{
		registry:      registry,
		conversations: conversations,
		messages:      messages,
		statuses:      statuses,
		users:         users,
		statusTTL:     statusTTL,
		logger:        logger,
	}
}

// Typing relays a typing indicator to every online participant of the
// conversation except the typist. Nothing is persisted.
func (r *EventRelay) Typing(ctx context.Context, sender Connection, event models.TypingEvent) error {
	event.UserID = sender.UserID()

	participants, err := r.conversations.ParticipantIDs(ctx, event.ConversationID)
	if err != nil {
		return fmt.Errorf("participant fetch: %w", err)
	}

	for _, participantID := range participants {
		if participantID == event.UserID {
			continue
		}
		if conn, ok := r.registry.Lookup(participantID); ok {
			conn.Emit(models.EventMessageTyping, event)
		}
	}
	return nil
}

// MarkRead upserts the read receipt and announces it to every online
// participant of the conversation. The reader's own connection is included;
// its other surfaces may want the receipt too.
func (r *EventRelay) MarkRead(ctx context.Context, sender Connection, event models.ReadEvent) error {
	event.UserID = sender.UserID()

	if err := r.messages.MarkRead(ctx, event.MessageID, event.UserID); err != nil {
		return fmt.Errorf("persist read receipt: %w", err)
	}

	participants, err := r.conversations.ParticipantIDs(ctx, event.ConversationID)
	if err != nil {
		return fmt.Errorf("participant fetch: %w", err)
	}

	for _, participantID := range participants {
		if conn, ok := r.registry.Lookup(participantID); ok {
			conn.Emit(models.EventMessageRead, event)
		}
	}
	return nil
}

// React upserts the reaction and broadcasts it to every online connection.
// The broadcast is deliberately not scoped to the conversation; clients that
// don't hold the message ignore the event.
func (r *EventRelay) React(ctx context.Context, sender Connection, event models.ReactionEvent) error {
	event.UserID = sender.UserID()

	if err := r.messages.UpsertReaction(ctx, event.MessageID, event.UserID, event.Emoji); err != nil {
		return fmt.Errorf("persist reaction: %w", err)
	}

	r.registry.Broadcast(models.EventMessageReaction, event, "")
	return nil
}

// CreateStatus stores a new ephemeral status and announces it to the
// creator's online contacts. Each call creates a fresh status with its own
// expiry.
func (r *EventRelay) CreateStatus(ctx context.Context, sender Connection, req models.CreateStatusRequest) error {
	now := time.Now()
	status := &models.Status{
		ID:        uuid.NewString(),
		UserID:    sender.UserID(),
		Type:      req.Type,
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		CreatedAt: now,
		ExpiresAt: now.Add(r.statusTTL),
	}

	if err := r.statuses.CreateStatus(ctx, status); err != nil {
		return fmt.Errorf("persist status: %w", err)
	}

	contacts, err := r.users.ContactIDs(ctx, status.UserID)
	if err != nil {
		return fmt.Errorf("contact fetch: %w", err)
	}

	for _, contactID := range contacts {
		if contactID == status.UserID {
			continue
		}
		if conn, ok := r.registry.Lookup(contactID); ok {
			conn.Emit(models.EventStatusCreate, status)
		}
	}
	return nil
}

// SyncStatuses delivers the still-live statuses of the user's contacts to a
// freshly connected client, so a reconnect catches up on stories posted while
// it was away. Each status arrives as its own status:create event.
func (r *EventRelay) SyncStatuses(ctx context.Context, conn Connection) error {
	contacts, err := r.users.ContactIDs(ctx, conn.UserID())
	if err != nil {
		return fmt.Errorf("contact fetch: %w", err)
	}

	for _, contactID := range contacts {
		statuses, err := r.statuses.UserStatuses(ctx, contactID)
		if err != nil {
			return fmt.Errorf("status fetch for %s: %w", contactID, err)
		}
		for i := range statuses {
			conn.Emit(models.EventStatusCreate, &statuses[i])
		}
	}
	return nil
}

// UpdateUserStatus writes the new status line (last write wins) and
// broadcasts it to everyone else online.
func (r *EventRelay) UpdateUserStatus(ctx context.Context, sender Connection, event models.UserStatusEvent) error {
	event.UserID = sender.UserID()

	if err := r.users.SetStatusText(ctx, event.UserID, event.Status); err != nil {
		return fmt.Errorf("persist status text: %w", err)
	}

	r.registry.Broadcast(models.EventUserStatus, event, event.UserID)
	return nil
}
