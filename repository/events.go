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

// EventRepository owns event records, including the attendee document.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert persists a new event.
func (r *EventRepository) Insert(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByID returns an event or (nil, nil) when absent.
func (r *EventRepository) GetByID(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListFilter narrows List results; zero values mean no constraint.
type ListFilter struct {
	City         string
	EventType    string
	UpcomingOnly bool
}

// List returns events matching the filter, soonest first.
func (r *EventRepository) List(ctx context.Context, f ListFilter) ([]models.Event, error) {
	tx := r.db.WithContext(ctx).Model(&models.Event{})
	if f.City != "" {
		tx = tx.Where("city ILIKE ?", "%"+f.City+"%")
	}
	if f.EventType != "" {
		tx = tx.Where("event_type = ?", f.EventType)
	}
	if f.UpcomingOnly {
		today := time.Now().UTC().Format("2006-01-02")
		tx = tx.Where("event_date >= ? AND status = ?", today, models.EventUpcoming)
	}

	var events []models.Event
	if err := tx.Order("event_date ASC").Limit(50).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListForGroup returns a group's events, soonest first.
func (r *EventRepository) ListForGroup(ctx context.Context, groupID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("event_date ASC").Limit(50).Find(&events).Error
	return events, err
}

// ListHostedBy returns events hosted by a family.
func (r *EventRepository) ListHostedBy(ctx context.Context, familyID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Where("host_family_id = ?", familyID).
		Limit(50).Find(&events).Error
	return events, err
}

// ListAttending returns events whose attendee document contains the family.
func (r *EventRepository) ListAttending(ctx context.Context, familyID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("attendees @> ?", attendeeMatch(familyID)).
		Limit(50).Find(&events).Error
	return events, err
}

// ListCalendar returns events the family hosts or attends inside the date
// window [start, end).
func (r *EventRepository) ListCalendar(ctx context.Context, familyID, start, end string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("host_family_id = ? OR attendees @> ?", familyID, attendeeMatch(familyID)).
		Where("event_date >= ? AND event_date < ?", start, end).
		Limit(100).Find(&events).Error
	return events, err
}

// RSVP adds the family to the attendee list. The duplicate and capacity
// checks run with the event row locked, so concurrent RSVPs cannot
// overshoot max_attendees.
func (r *EventRepository) RSVP(ctx context.Context, eventID string, attendee models.Attendee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", eventID).First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if event.HasAttendee(attendee.FamilyID) {
			return ErrAlreadyRegistered
		}
		if event.IsFull() {
			return ErrEventFull
		}

		event.Attendees = append(event.Attendees, attendee)
		return tx.Model(&models.Event{}).Where("event_id = ?", eventID).
			Update("attendees", event.Attendees).Error
	})
}

// CancelRSVP removes the family from the attendee list; removing a family
// that never registered is a no-op.
func (r *EventRepository) CancelRSVP(ctx context.Context, eventID, familyID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", eventID).First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		kept := event.Attendees[:0]
		for _, a := range event.Attendees {
			if a.FamilyID != familyID {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(event.Attendees) {
			return nil
		}
		return tx.Model(&models.Event{}).Where("event_id = ?", eventID).
			Update("attendees", kept).Error
	})
}

// attendeeMatch builds the jsonb containment document for one family.
func attendeeMatch(familyID string) string {
	return fmt.Sprintf(`[{"family_id": %q}]`, familyID)
}
