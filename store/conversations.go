package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/felixzhu97/whatschat-sub002/models"
)

// ConversationStore answers membership questions for the relay layer.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// IsParticipant reports whether the user has a membership record in the
// conversation.
func (s *ConversationStore) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	cid, err := uuid.Parse(conversationID)
	if err != nil {
		return false, nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}

	var count int64
	err = s.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ?", cid, uid).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}

	return count > 0, nil
}

// ParticipantIDs returns the ids of every member of the conversation.
func (s *ConversationStore) ParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	cid, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation id: %w", err)
	}

	var ids []string
	err = s.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("conversation_id = ?", cid).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	return ids, nil
}
