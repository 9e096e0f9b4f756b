package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/villagefriends/network_backend/discovery"
	"github.com/villagefriends/network_backend/models"
)

// ProfileRepository owns family profile records.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile. A user may own at most one; a second insert
// fails with ErrProfileExists.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.FamilyProfile) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FamilyProfile{}).
		Where("user_id = ?", profile.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrProfileExists
	}
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByUserID returns the user's profile or (nil, nil) when absent.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.FamilyProfile, error) {
	var profile models.FamilyProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByID returns a profile by family ID or (nil, nil) when absent.
func (r *ProfileRepository) GetByID(ctx context.Context, familyID string) (*models.FamilyProfile, error) {
	var profile models.FamilyProfile
	err := r.db.WithContext(ctx).Where("family_id = ?", familyID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetManyByIDs returns profiles for the given family IDs, keyed by ID.
func (r *ProfileRepository) GetManyByIDs(ctx context.Context, familyIDs []string) (map[string]models.FamilyProfile, error) {
	var profiles []models.FamilyProfile
	if err := r.db.WithContext(ctx).Where("family_id IN ?", familyIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.FamilyProfile, len(profiles))
	for _, p := range profiles {
		byID[p.FamilyID] = p
	}
	return byID, nil
}

// Update replaces the stored profile document.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.FamilyProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpdatePicture sets the profile picture URL.
func (r *ProfileRepository) UpdatePicture(ctx context.Context, familyID, url string) error {
	return r.db.WithContext(ctx).Model(&models.FamilyProfile{}).
		Where("family_id = ?", familyID).
		Update("profile_picture", url).Error
}

// Search implements discovery.ProfileStore. The location predicates are
// pushed into SQL; the interest intersection lives in a JSON document
// column, so the full Query.Matches predicate runs as a post-filter.
func (r *ProfileRepository) Search(ctx context.Context, q discovery.Query) ([]models.FamilyProfile, error) {
	tx := r.db.WithContext(ctx).Model(&models.FamilyProfile{})
	if q.ExcludeUserID != "" {
		tx = tx.Where("user_id <> ?", q.ExcludeUserID)
	}
	if q.ZipCode != "" {
		tx = tx.Where("zip_code = ?", q.ZipCode)
	}
	if q.City != "" {
		tx = tx.Where("city ILIKE ?", "%"+q.City+"%")
	}
	if q.State != "" {
		tx = tx.Where("state ILIKE ?", "%"+q.State+"%")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	var profiles []models.FamilyProfile
	if err := tx.Limit(limit).Find(&profiles).Error; err != nil {
		return nil, err
	}

	matched := profiles[:0]
	for i := range profiles {
		if q.Matches(&profiles[i]) {
			matched = append(matched, profiles[i])
		}
	}
	return matched, nil
}

// SearchText matches families whose name, city or bio contains the free
// text, optionally restricted to shared interests.
func (r *ProfileRepository) SearchText(ctx context.Context, excludeUserID, text string, interests []string) ([]models.FamilyProfile, error) {
	tx := r.db.WithContext(ctx).Model(&models.FamilyProfile{}).
		Where("user_id <> ?", excludeUserID)
	if text != "" {
		like := "%" + text + "%"
		tx = tx.Where("family_name ILIKE ? OR city ILIKE ? OR bio ILIKE ?", like, like, like)
	}

	var profiles []models.FamilyProfile
	if err := tx.Limit(50).Find(&profiles).Error; err != nil {
		return nil, err
	}
	if len(interests) == 0 {
		return profiles, nil
	}

	matched := profiles[:0]
	for i := range profiles {
		if profiles[i].SharesInterest(interests) {
			matched = append(matched, profiles[i])
		}
	}
	return matched, nil
}

// NearbyUserIDs returns owning users of families in the given city (substring)
// or zip code, excluding one user. Used to announce new events.
func (r *ProfileRepository) NearbyUserIDs(ctx context.Context, excludeUserID, city, zipCode string) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Model(&models.FamilyProfile{}).
		Where("user_id <> ?", excludeUserID).
		Where("city ILIKE ? OR zip_code = ?", "%"+city+"%", zipCode).
		Limit(50).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
