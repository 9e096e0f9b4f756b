// Package repository provides the gorm-backed stores for every collection.
// Each repository receives its database handle at construction; none holds
// global state.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/villagefriends/network_backend/models"
)

// UserRepository owns user account records.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate email fails with ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEmail
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID returns the user or (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user or (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ActivateSubscription marks the user's subscription active until endsAt.
func (r *UserRepository) ActivateSubscription(ctx context.Context, userID, plan string, endsAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"subscription_status":  models.SubscriptionActive,
			"subscription_plan":    plan,
			"subscription_ends_at": endsAt,
		}).Error
}

// UpdatePreferences replaces the user's notification preferences.
func (r *UserRepository) UpdatePreferences(ctx context.Context, userID string, prefs models.NotificationPreferences) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("preferences", prefs).Error
}
