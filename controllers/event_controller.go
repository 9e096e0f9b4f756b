package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/notifications"
	"github.com/villagefriends/network_backend/repository"
	"github.com/villagefriends/network_backend/utils"
)

type EventController struct {
	events     *repository.EventRepository
	profiles   *repository.ProfileRepository
	dispatcher *notifications.Dispatcher
}

func NewEventController(events *repository.EventRepository, profiles *repository.ProfileRepository, dispatcher *notifications.Dispatcher) *EventController {
	return &EventController{events: events, profiles: profiles, dispatcher: dispatcher}
}

type EventInput struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	EventDate    string   `json:"event_date" binding:"required"`
	EventTime    string   `json:"event_time"`
	Location     string   `json:"location"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zip_code"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	MaxAttendees *int     `json:"max_attendees"`
	AgeRange     string   `json:"age_range"`
	EventType    string   `json:"event_type"`
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event hosted by the caller's family and notifies nearby families
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventInput true "Event"
// @Success 201 {object} map[string]interface{} "Created event"
// @Failure 400 {object} map[string]string "Invalid input or missing profile"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/events [post]
func (ctrl *EventController) CreateEvent(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	}

	var input EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventType := input.EventType
	if eventType == "" {
		eventType = "meetup"
	}

	event := models.Event{
		EventID:        utils.NewID("event"),
		HostFamilyID:   profile.FamilyID,
		HostFamilyName: profile.FamilyName,
		Title:          input.Title,
		Description:    input.Description,
		EventDate:      input.EventDate,
		EventTime:      input.EventTime,
		Location:       input.Location,
		City:           input.City,
		State:          input.State,
		ZipCode:        input.ZipCode,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		MaxAttendees:   input.MaxAttendees,
		AgeRange:       input.AgeRange,
		EventType:      eventType,
		Attendees:      []models.Attendee{},
		Status:         models.EventUpcoming,
	}

	if err := ctrl.events.Insert(c.Request.Context(), &event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	// Announce to families in the same city or zip, best effort.
	go func() {
		ctx := context.Background()
		userIDs, err := ctrl.profiles.NearbyUserIDs(ctx, userID, event.City, event.ZipCode)
		if err != nil || len(userIDs) == 0 {
			return
		}
		ctrl.dispatcher.NotifyNewEvent(ctx, event.Title, profile.FamilyName, userIDs)
	}()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   event,
	})
}

// ListEvents returns events filtered by city, type and upcoming flag.
func (ctrl *EventController) ListEvents(c *gin.Context) {
	filter := repository.ListFilter{
		City:         c.Query("city"),
		EventType:    c.Query("event_type"),
		UpcomingOnly: c.Query("upcoming") != "false",
	}

	events, err := ctrl.events.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// MyEvents returns events the caller's family hosts or attends.
func (ctrl *EventController) MyEvents(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	}

	hosted, err := ctrl.events.ListHostedBy(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	attending, err := ctrl.events.ListAttending(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hosted":    hosted,
		"attending": attending,
	})
}

// GetEvent returns a single event by ID.
func (ctrl *EventController) GetEvent(c *gin.Context) {
	event, err := ctrl.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// RSVP registers the caller's family as an attendee.
func (ctrl *EventController) RSVP(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	}

	attendee := models.Attendee{
		FamilyID:   profile.FamilyID,
		FamilyName: profile.FamilyName,
		RSVPDate:   time.Now().UTC(),
	}

	err = ctrl.events.RSVP(c.Request.Context(), c.Param("id"), attendee)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, repository.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "Already registered for this event"})
	case errors.Is(err, repository.ErrEventFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Event is full"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to RSVP"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "RSVP confirmed"})
	}
}

// CancelRSVP removes the caller's family from the attendee list.
func (ctrl *EventController) CancelRSVP(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	}

	err = ctrl.events.CancelRSVP(c.Request.Context(), c.Param("id"), profile.FamilyID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel RSVP"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "RSVP cancelled"})
	}
}

// Calendar returns the caller's events inside a month window.
func (ctrl *EventController) Calendar(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	}

	month := c.Query("month") // YYYY-MM
	start, err := time.Parse("2006-01", month)
	if err != nil {
		start = time.Now().UTC()
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	end := start.AddDate(0, 1, 0)

	events, err := ctrl.events.ListCalendar(c.Request.Context(), profile.FamilyID,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch calendar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
