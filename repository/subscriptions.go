package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/villagefriends/network_backend/models"
)

// PushSubscriptionRepository stores browser push subscriptions.
type PushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPushSubscriptionRepository constructs a PushSubscriptionRepository.
func NewPushSubscriptionRepository(db *gorm.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{db: db}
}

// Create registers a subscription. Re-registering the same endpoint for
// the same user is a no-op.
func (r *PushSubscriptionRepository) Create(ctx context.Context, sub *models.PushSubscription) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PushSubscription{}).
		Where("user_id = ? AND endpoint = ?", sub.UserID, sub.Endpoint).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

// Delete removes the subscription with the given endpoint for a user.
func (r *PushSubscriptionRepository) Delete(ctx context.Context, userID, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error
}

// DeleteByID removes a subscription by its row id. The push dispatcher
// calls this when an endpoint has gone stale.
func (r *PushSubscriptionRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PushSubscription{}, id).Error
}

// ListByUser returns a user's subscriptions.
func (r *PushSubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Limit(10).Find(&subs).Error
	return subs, err
}

// CountByUser returns how many subscriptions a user has registered.
func (r *PushSubscriptionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PushSubscription{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// PaymentRepository stores checkout transactions.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Insert persists a new transaction.
func (r *PaymentRepository) Insert(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// GetBySessionID returns a transaction or (nil, nil) when absent.
func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateStatus moves a transaction to a new payment status.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, sessionID, status string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("session_id = ?", sessionID).
		Update("payment_status", status).Error
}

// VerificationRepository stores ID verification submissions.
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository constructs a VerificationRepository.
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Insert persists a new verification record.
func (r *VerificationRepository) Insert(ctx context.Context, v *models.IDVerification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// GetByUserID returns the latest verification for a user or (nil, nil).
func (r *VerificationRepository) GetByUserID(ctx context.Context, userID string) (*models.IDVerification, error) {
	var v models.IDVerification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("submitted_at DESC").First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
