package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/felixzhu97/whatschat-sub002/models"
)

// UserStore reads identity records and writes presence-related user fields.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// GetUser returns the user record, or (nil, nil) when no record exists.
func (s *UserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &user, nil
}

// SetOnline updates the online flag and last-seen timestamp.
func (s *UserStore) SetOnline(ctx context.Context, userID string, online bool, lastSeen time.Time) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"online": online, "last_seen": lastSeen}).Error
	if err != nil {
		return fmt.Errorf("failed to update online state: %w", err)
	}

	return nil
}

// SetStatusText updates the user's status line. Last write wins.
func (s *UserStore) SetStatusText(ctx context.Context, userID, status string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update status text: %w", err)
	}

	return nil
}

// ContactIDs returns the ids of everyone in the user's contact list.
func (s *UserStore) ContactIDs(ctx context.Context, userID string) ([]string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	var ids []string
	err = s.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_id = ?", id).
		Pluck("contact_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return ids, nil
}
