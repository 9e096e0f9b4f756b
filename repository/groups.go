package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/villagefriends/network_backend/models"
)

// GroupRepository stores co-op groups. Membership, join-request and
// announcement documents are mutated under a row lock so concurrent
// joins cannot corrupt the lists or overshoot max_members.
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Insert persists a new group.
func (r *GroupRepository) Insert(ctx context.Context, group *models.CoopGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// GetByID returns a group or (nil, nil) when absent.
func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (*models.CoopGroup, error) {
	var group models.CoopGroup
	err := r.db.WithContext(ctx).Where("group_id = ?", groupID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GroupFilter narrows List results; zero values mean no constraint.
type GroupFilter struct {
	City       string
	GroupType  string
	PublicOnly bool
}

// List returns groups matching the filter.
func (r *GroupRepository) List(ctx context.Context, f GroupFilter) ([]models.CoopGroup, error) {
	tx := r.db.WithContext(ctx).Model(&models.CoopGroup{})
	if f.City != "" {
		tx = tx.Where("city ILIKE ?", "%"+f.City+"%")
	}
	if f.GroupType != "" {
		tx = tx.Where("group_type = ?", f.GroupType)
	}
	if f.PublicOnly {
		tx = tx.Where("is_private = ?", false)
	}

	var groups []models.CoopGroup
	if err := tx.Order("created_at DESC").Limit(50).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// ListOwnedBy returns groups a family owns.
func (r *GroupRepository) ListOwnedBy(ctx context.Context, familyID string) ([]models.CoopGroup, error) {
	var groups []models.CoopGroup
	err := r.db.WithContext(ctx).Where("owner_family_id = ?", familyID).
		Limit(50).Find(&groups).Error
	return groups, err
}

// ListMemberOf returns groups whose member document contains the family.
func (r *GroupRepository) ListMemberOf(ctx context.Context, familyID string) ([]models.CoopGroup, error) {
	var groups []models.CoopGroup
	err := r.db.WithContext(ctx).
		Where("members @> ?", memberMatch(familyID)).
		Limit(50).Find(&groups).Error
	return groups, err
}

// Update saves the full group record.
func (r *GroupRepository) Update(ctx context.Context, group *models.CoopGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// Delete removes a group.
func (r *GroupRepository) Delete(ctx context.Context, groupID string) error {
	return r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Delete(&models.CoopGroup{}).Error
}

// AddMember appends a family to the membership list. ErrAlreadyMember and
// ErrGroupFull are checked with the row locked.
func (r *GroupRepository) AddMember(ctx context.Context, groupID string, member models.GroupMember) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		if group.Member(member.FamilyID) != nil {
			return ErrAlreadyMember
		}
		if group.IsFull() {
			return ErrGroupFull
		}
		group.Members = append(group.Members, member)
		group.MemberCount = len(group.Members)
		return nil
	})
}

// RemoveMember drops a family from the membership list; removing an
// absent family is a no-op.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, familyID string) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		kept := group.Members[:0]
		for _, m := range group.Members {
			if m.FamilyID != familyID {
				kept = append(kept, m)
			}
		}
		group.Members = kept
		group.MemberCount = len(group.Members)
		return nil
	})
}

// QueueJoinRequest records a family waiting for approval into a private
// group. Duplicate requests and existing members are rejected.
func (r *GroupRepository) QueueJoinRequest(ctx context.Context, groupID string, req models.JoinRequest) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		if group.Member(req.FamilyID) != nil {
			return ErrAlreadyMember
		}
		for _, jr := range group.JoinRequests {
			if jr.FamilyID == req.FamilyID {
				return ErrAlreadyMember
			}
		}
		if group.IsFull() {
			return ErrGroupFull
		}
		group.JoinRequests = append(group.JoinRequests, req)
		return nil
	})
}

// ApproveJoinRequest promotes a queued request into membership.
func (r *GroupRepository) ApproveJoinRequest(ctx context.Context, groupID, familyID string) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		var approved *models.JoinRequest
		kept := group.JoinRequests[:0]
		for i := range group.JoinRequests {
			if group.JoinRequests[i].FamilyID == familyID {
				approved = &group.JoinRequests[i]
				continue
			}
			kept = append(kept, group.JoinRequests[i])
		}
		if approved == nil {
			return ErrNotFound
		}
		if group.IsFull() {
			return ErrGroupFull
		}
		group.JoinRequests = kept
		group.Members = append(group.Members, models.GroupMember{
			FamilyID:   approved.FamilyID,
			FamilyName: approved.FamilyName,
			Role:       models.RoleMember,
			JoinedAt:   time.Now().UTC(),
		})
		group.MemberCount = len(group.Members)
		return nil
	})
}

// RejectJoinRequest drops a queued request.
func (r *GroupRepository) RejectJoinRequest(ctx context.Context, groupID, familyID string) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		kept := group.JoinRequests[:0]
		found := false
		for _, jr := range group.JoinRequests {
			if jr.FamilyID == familyID {
				found = true
				continue
			}
			kept = append(kept, jr)
		}
		if !found {
			return ErrNotFound
		}
		group.JoinRequests = kept
		return nil
	})
}

// UpdateMemberRole changes a member's role.
func (r *GroupRepository) UpdateMemberRole(ctx context.Context, groupID, familyID, role string) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		m := group.Member(familyID)
		if m == nil {
			return ErrNotFound
		}
		m.Role = role
		return nil
	})
}

// TransferOwnership makes another member the owner. The previous owner
// stays in the group as an admin.
func (r *GroupRepository) TransferOwnership(ctx context.Context, groupID, newOwnerFamilyID string) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		next := group.Member(newOwnerFamilyID)
		if next == nil {
			return ErrNotFound
		}
		if prev := group.Member(group.OwnerFamilyID); prev != nil {
			prev.Role = models.RoleAdmin
		}
		next.Role = models.RoleOwner
		group.OwnerFamilyID = next.FamilyID
		group.OwnerFamilyName = next.FamilyName
		return nil
	})
}

// AddAnnouncement prepends an announcement so the newest shows first.
func (r *GroupRepository) AddAnnouncement(ctx context.Context, groupID string, ann models.Announcement) error {
	return r.mutate(ctx, groupID, func(group *models.CoopGroup) error {
		group.Announcements = append([]models.Announcement{ann}, group.Announcements...)
		return nil
	})
}

// mutate loads the group under FOR UPDATE, applies fn, and saves.
func (r *GroupRepository) mutate(ctx context.Context, groupID string, fn func(*models.CoopGroup) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.CoopGroup
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("group_id = ?", groupID).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&group); err != nil {
			return err
		}
		return tx.Save(&group).Error
	})
}

// memberMatch builds the jsonb containment document for one family.
func memberMatch(familyID string) string {
	return fmt.Sprintf(`[{"family_id": %q}]`, familyID)
}
