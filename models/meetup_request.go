package models

import (
	"time"
)

// Meetup request states. A request starts pending and is settled exactly
// once by the target family; both settled states are terminal.
const (
	MeetupPending  = "pending"
	MeetupAccepted = "accepted"
	MeetupDeclined = "declined"
)

type MeetupRequest struct {
	RequestID           string    `gorm:"primaryKey;size:32" json:"request_id"`
	RequesterFamilyID   string    `gorm:"size:32;not null;index" json:"requester_family_id"`
	RequesterFamilyName string    `gorm:"size:255" json:"requester_family_name"`
	TargetFamilyID      string    `gorm:"size:32;not null;index" json:"target_family_id"`
	ProposedDate        string    `gorm:"size:10" json:"proposed_date"`
	ProposedTime        string    `gorm:"size:8" json:"proposed_time"`
	Location            string    `gorm:"size:255" json:"location"`
	Message             string    `gorm:"type:text" json:"message,omitempty"`
	Status              string    `gorm:"size:20;default:'pending'" json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
