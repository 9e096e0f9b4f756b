package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/villagefriends/network_backend/models"
)

// MeetupRepository stores meetup requests.
type MeetupRepository struct {
	db *gorm.DB
}

// NewMeetupRepository constructs a MeetupRepository.
func NewMeetupRepository(db *gorm.DB) *MeetupRepository {
	return &MeetupRepository{db: db}
}

// Insert persists a new meetup request.
func (r *MeetupRepository) Insert(ctx context.Context, req *models.MeetupRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetByID returns a request or (nil, nil) when absent.
func (r *MeetupRepository) GetByID(ctx context.Context, requestID string) (*models.MeetupRequest, error) {
	var req models.MeetupRequest
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// TransitionStatus moves a request from one status to another. It reports
// false when the request was not in the expected status, so only one of
// two concurrent responses can win.
func (r *MeetupRepository) TransitionStatus(ctx context.Context, requestID, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.MeetupRequest{}).
		Where("request_id = ? AND status = ?", requestID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListIncoming returns requests addressed to the family, newest first.
func (r *MeetupRepository) ListIncoming(ctx context.Context, familyID string) ([]models.MeetupRequest, error) {
	var reqs []models.MeetupRequest
	err := r.db.WithContext(ctx).Where("target_family_id = ?", familyID).
		Order("created_at DESC").Limit(50).Find(&reqs).Error
	return reqs, err
}

// ListOutgoing returns requests the family has sent, newest first.
func (r *MeetupRepository) ListOutgoing(ctx context.Context, familyID string) ([]models.MeetupRequest, error) {
	var reqs []models.MeetupRequest
	err := r.db.WithContext(ctx).Where("requester_family_id = ?", familyID).
		Order("created_at DESC").Limit(50).Find(&reqs).Error
	return reqs, err
}
