package models

import (
	"time"
)

// Group member roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember is a family's membership entry inside a co-op group.
type GroupMember struct {
	FamilyID   string    `json:"family_id"`
	FamilyName string    `json:"family_name"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
}

// JoinRequest queues a family wanting into a private group.
type JoinRequest struct {
	FamilyID    string    `json:"family_id"`
	FamilyName  string    `json:"family_name"`
	RequestedAt time.Time `json:"requested_at"`
}

// Announcement is a pinned-or-not post inside a group, newest first.
type Announcement struct {
	AnnouncementID   string    `json:"announcement_id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	Pinned           bool      `json:"pinned"`
	AuthorFamilyID   string    `json:"author_family_id"`
	AuthorFamilyName string    `json:"author_family_name"`
	CreatedAt        time.Time `json:"created_at"`
}

type CoopGroup struct {
	GroupID          string         `gorm:"primaryKey;size:32" json:"group_id"`
	OwnerFamilyID    string         `gorm:"size:32;not null;index" json:"owner_family_id"`
	OwnerFamilyName  string         `gorm:"size:255" json:"owner_family_name"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	Description      string         `gorm:"type:text" json:"description,omitempty"`
	City             string         `gorm:"size:128" json:"city"`
	State            string         `gorm:"size:64" json:"state"`
	ZipCode          string         `gorm:"size:16" json:"zip_code"`
	GroupType        string         `gorm:"size:32;default:'co-op'" json:"group_type"`
	FocusAreas       []string       `gorm:"serializer:json;type:jsonb" json:"focus_areas"`
	AgeRange         string         `gorm:"size:32" json:"age_range,omitempty"`
	MeetingFrequency string         `gorm:"size:32" json:"meeting_frequency,omitempty"`
	MaxMembers       *int           `json:"max_members,omitempty"`
	IsPrivate        bool           `json:"is_private"`
	Members          []GroupMember  `gorm:"serializer:json;type:jsonb" json:"members"`
	MemberCount      int            `json:"member_count"`
	JoinRequests     []JoinRequest  `gorm:"serializer:json;type:jsonb" json:"join_requests,omitempty"`
	Announcements    []Announcement `gorm:"serializer:json;type:jsonb" json:"announcements,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Member returns the membership entry for a family, or nil.
func (g *CoopGroup) Member(familyID string) *GroupMember {
	for i := range g.Members {
		if g.Members[i].FamilyID == familyID {
			return &g.Members[i]
		}
	}
	return nil
}

// CanModerate reports whether the family holds an owner or admin role.
func (g *CoopGroup) CanModerate(familyID string) bool {
	m := g.Member(familyID)
	return m != nil && (m.Role == RoleOwner || m.Role == RoleAdmin)
}

// IsFull reports whether the group has reached max_members.
func (g *CoopGroup) IsFull() bool {
	return g.MaxMembers != nil && len(g.Members) >= *g.MaxMembers
}
