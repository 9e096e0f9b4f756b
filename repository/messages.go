package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/villagefriends/network_backend/models"
)

// MessageRepository stores direct messages between families.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert persists a new message.
func (r *MessageRepository) Insert(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListForFamily returns all messages the family sent or received, newest
// first.
func (r *MessageRepository) ListForFamily(ctx context.Context, familyID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("sender_family_id = ? OR recipient_family_id = ?", familyID, familyID).
		Order("created_at DESC").Limit(100).Find(&msgs).Error
	return msgs, err
}

// Conversation returns the thread between two families, oldest first, and
// marks messages addressed to the viewer as read.
func (r *MessageRepository) Conversation(ctx context.Context, viewerFamilyID, otherFamilyID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_family_id = ? AND recipient_family_id = ?) OR (sender_family_id = ? AND recipient_family_id = ?)",
			viewerFamilyID, otherFamilyID, otherFamilyID, viewerFamilyID).
		Order("created_at ASC").Limit(200).Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_family_id = ? AND recipient_family_id = ? AND read = ?",
			otherFamilyID, viewerFamilyID, false).
		Update("read", true).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// CountUnread returns how many unread messages the family has.
func (r *MessageRepository) CountUnread(ctx context.Context, familyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_family_id = ? AND read = ?", familyID, false).
		Count(&count).Error
	return count, err
}
