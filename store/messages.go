package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/felixzhu97/whatschat-sub002/models"
)

// MessageStore persists messages, read receipts and reactions.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// CreateMessage writes the durable copy of a message.
func (s *MessageStore) CreateMessage(ctx context.Context, message *models.Message) error {
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// MarkRead upserts a read receipt. A second call for the same (message, user)
// pair leaves the existing row untouched.
func (s *MessageStore) MarkRead(ctx context.Context, messageID, userID string) error {
	mid, err := uuid.Parse(messageID)
	if err != nil {
		return fmt.Errorf("invalid message id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	receipt := models.MessageRead{
		ID:        uuid.New(),
		MessageID: mid,
		UserID:    uid,
		ReadAt:    time.Now(),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&receipt).Error
	if err != nil {
		return fmt.Errorf("failed to upsert read receipt: %w", err)
	}

	return nil
}

// UpsertReaction records a reaction; a new emoji from the same user replaces
// the previous one.
func (s *MessageStore) UpsertReaction(ctx context.Context, messageID, userID, emoji string) error {
	mid, err := uuid.Parse(messageID)
	if err != nil {
		return fmt.Errorf("invalid message id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	reaction := models.Reaction{
		ID:        uuid.New(),
		MessageID: mid,
		UserID:    uid,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"emoji", "created_at"}),
		}).
		Create(&reaction).Error
	if err != nil {
		return fmt.Errorf("failed to upsert reaction: %w", err)
	}

	return nil
}
