package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixzhu97/whatschat-sub002/models"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

// MessageRelay authorizes, persists and fans out chat messages. It holds no
// state of its own; every call stands alone.
type MessageRelay struct {
	registry      *PresenceRegistry
	conversations ConversationDirectory
	messages      MessageRepository
	logger        *utils.Logger
}

func NewMessageRelay(registry *PresenceRegistry, conversations ConversationDirectory, messages MessageRepository, logger *utils.Logger) *MessageRelay {
	return &MessageRelay{
		registry:      registry,
		conversations: conversations,
		messages:      messages,
		logger:        logger,
	}
}

// Send runs the full pipeline: membership check, durable write, live fan-out
// to online participants, then a single ack to the sender. Any failure is
// reported once to the sender and nothing is retried; participants that are
// offline receive nothing and pick the message up from the store later.
func (r *MessageRelay) Send(ctx context.Context, sender Connection, req models.SendMessageRequest) error {
	senderID := sender.UserID()

	authorized, err := r.conversations.IsParticipant(ctx, req.ConversationID, senderID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !authorized {
		return ErrNotParticipant
	}

	message, err := buildMessage(senderID, req)
	if err != nil {
		return err
	}

	if err := r.messages.CreateMessage(ctx, message); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	participants, err := r.conversations.ParticipantIDs(ctx, req.ConversationID)
	if err != nil {
		// The durable copy exists; the conversation stays consistent on the
		// next fetch even though live delivery is skipped.
		return fmt.Errorf("participant fetch: %w", err)
	}

	for _, participantID := range participants {
		if participantID == senderID {
			continue
		}
		if conn, ok := r.registry.Lookup(participantID); ok {
			conn.Emit(models.EventMessageSend, message)
		}
	}

	sender.Emit(models.EventMessageSent, message)
	return nil
}

func buildMessage(senderID string, req models.SendMessageRequest) (*models.Message, error) {
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation id: %w", err)
	}
	sid, err := uuid.Parse(senderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender id: %w", err)
	}

	messageType := req.Type
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       sid,
		Type:           messageType,
		Content:        req.Content,
		MediaURL:       req.MediaURL,
		CreatedAt:      time.Now(),
	}

	if req.ReplyToID != "" {
		replyTo, err := uuid.Parse(req.ReplyToID)
		if err != nil {
			return nil, fmt.Errorf("invalid reply-to id: %w", err)
		}
		message.ReplyToID = &replyTo
	}

	return message, nil
}
