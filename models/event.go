package models

import (
	"time"
)

// Event lifecycle states.
const (
	EventUpcoming  = "upcoming"
	EventConfirmed = "confirmed"
)

// Attendee is a family's RSVP entry on an event.
type Attendee struct {
	FamilyID   string    `json:"family_id"`
	FamilyName string    `json:"family_name"`
	RSVPDate   time.Time `json:"rsvp_date"`
}

type Event struct {
	EventID        string     `gorm:"primaryKey;size:32" json:"event_id"`
	GroupID        string     `gorm:"size:32;index" json:"group_id,omitempty"`
	GroupName      string     `gorm:"size:255" json:"group_name,omitempty"`
	HostFamilyID   string     `gorm:"size:32;not null;index" json:"host_family_id"`
	HostFamilyName string     `gorm:"size:255" json:"host_family_name"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	EventDate      string     `gorm:"size:10;index" json:"event_date"` // YYYY-MM-DD
	EventTime      string     `gorm:"size:8" json:"event_time"`
	Location       string     `gorm:"size:255" json:"location"`
	City           string     `gorm:"size:128" json:"city"`
	State          string     `gorm:"size:64" json:"state"`
	ZipCode        string     `gorm:"size:16" json:"zip_code"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	MaxAttendees   *int       `json:"max_attendees,omitempty"`
	AgeRange       string     `gorm:"size:32" json:"age_range,omitempty"`
	EventType      string     `gorm:"size:32;default:'meetup'" json:"event_type"`
	Attendees      []Attendee `gorm:"serializer:json;type:jsonb" json:"attendees"`
	Status         string     `gorm:"size:20;default:'upcoming'" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasAttendee reports whether the family already holds an RSVP.
func (e *Event) HasAttendee(familyID string) bool {
	for _, a := range e.Attendees {
		if a.FamilyID == familyID {
			return true
		}
	}
	return false
}

// IsFull reports whether the attendee list has reached max_attendees.
// Events without a capacity bound are never full.
func (e *Event) IsFull() bool {
	return e.MaxAttendees != nil && len(e.Attendees) >= *e.MaxAttendees
}
