// Package meetup implements the meetup-request workflow: a family proposes
// a get-together, the target family settles it, and an accepted proposal
// materializes as a confirmed two-family event.
package meetup

import (
	"context"
	"fmt"
	"time"

	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/utils"
)

// ProfileStore resolves family profiles for the workflow's parties.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.FamilyProfile, error)
	GetByID(ctx context.Context, familyID string) (*models.FamilyProfile, error)
}

// RequestStore owns meetup request records.
type RequestStore interface {
	Insert(ctx context.Context, req *models.MeetupRequest) error
	GetByID(ctx context.Context, requestID string) (*models.MeetupRequest, error)
	// TransitionStatus atomically moves a request from one status to
	// another and reports whether the swap won. A false return means the
	// request was not in the expected source state.
	TransitionStatus(ctx context.Context, requestID, from, to string) (bool, error)
}

// EventStore persists events created by accepted requests.
type EventStore interface {
	Insert(ctx context.Context, event *models.Event) error
}

// Notifier delivers meetup push notifications. Implementations never fail
// the caller; delivery problems are their own to log.
type Notifier interface {
	NotifyMeetupRequest(ctx context.Context, requesterFamilyName, targetUserID, status string)
}

// Workflow drives the pending → accepted/declined state machine.
type Workflow struct {
	profiles ProfileStore
	requests RequestStore
	events   EventStore
	notifier Notifier
}

// NewWorkflow constructs a Workflow with its dependencies.
func NewWorkflow(profiles ProfileStore, requests RequestStore, events EventStore, notifier Notifier) *Workflow {
	return &Workflow{profiles: profiles, requests: requests, events: events, notifier: notifier}
}

// CreateInput carries the caller-supplied fields of a new request.
type CreateInput struct {
	TargetFamilyID string
	ProposedDate   string
	ProposedTime   string
	Location       string
	Message        string
}

// CreateRequest persists a pending meetup request from the caller's family
// and notifies the target family's user, best effort.
func (w *Workflow) CreateRequest(ctx context.Context, userID string, in CreateInput) (*models.MeetupRequest, error) {
	profile, err := w.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load requester profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileRequired
	}
	if in.TargetFamilyID == profile.FamilyID {
		return nil, ErrSelfRequest
	}

	req := &models.MeetupRequest{
		RequestID:           utils.NewID("meetup"),
		RequesterFamilyID:   profile.FamilyID,
		RequesterFamilyName: profile.FamilyName,
		TargetFamilyID:      in.TargetFamilyID,
		ProposedDate:        in.ProposedDate,
		ProposedTime:        in.ProposedTime,
		Location:            in.Location,
		Message:             in.Message,
		Status:              models.MeetupPending,
	}

	if err := w.requests.Insert(ctx, req); err != nil {
		return nil, fmt.Errorf("insert meetup request: %w", err)
	}

	// The target profile may be gone; the request still stands, only the
	// notification is skipped.
	if target, err := w.profiles.GetByID(ctx, in.TargetFamilyID); err == nil && target != nil {
		w.dispatch(profile.FamilyName, target.UserID, "new")
	}

	return req, nil
}

// Respond settles a pending request as accepted or declined. Only the
// target family may respond, and only once: the transition runs as a
// compare-and-swap from pending, so a repeated or racing response loses
// with ErrAlreadyResponded. Accepting creates a confirmed event hosted by
// the requester with the responder pre-enrolled.
func (w *Workflow) Respond(ctx context.Context, userID, requestID, status string) (*models.MeetupRequest, error) {
	if status != models.MeetupAccepted && status != models.MeetupDeclined {
		return nil, ErrInvalidStatus
	}

	profile, err := w.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load responder profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileRequired
	}

	req, err := w.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load meetup request: %w", err)
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.TargetFamilyID != profile.FamilyID {
		return nil, ErrForbidden
	}

	ok, err := w.requests.TransitionStatus(ctx, requestID, models.MeetupPending, status)
	if err != nil {
		return nil, fmt.Errorf("update meetup request: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyResponded
	}
	req.Status = status

	// The status transition is committed at this point. A failure below
	// surfaces as an error with the request already accepted and no event
	// created; the steps are not transactional.
	requester, err := w.profiles.GetByID(ctx, req.RequesterFamilyID)
	if err != nil {
		return nil, fmt.Errorf("load requester profile: %w", err)
	}

	if status == models.MeetupAccepted {
		if err := w.events.Insert(ctx, w.buildEvent(req, profile, requester)); err != nil {
			return nil, fmt.Errorf("create meetup event: %w", err)
		}
	}

	if requester != nil {
		w.dispatch(profile.FamilyName, requester.UserID, status)
	}

	return req, nil
}

// buildEvent materializes the confirmed two-family event for an accepted
// request: the requester hosts, the responder is already enrolled.
func (w *Workflow) buildEvent(req *models.MeetupRequest, responder, requester *models.FamilyProfile) *models.Event {
	hostName := "Unknown"
	if requester != nil {
		hostName = requester.FamilyName
	}

	description := req.Message
	if description == "" {
		description = "Scheduled meetup"
	}

	maxAttendees := 2
	return &models.Event{
		EventID:        utils.NewID("event"),
		HostFamilyID:   req.RequesterFamilyID,
		HostFamilyName: hostName,
		Title:          "Meetup with " + responder.FamilyName,
		Description:    description,
		EventDate:      req.ProposedDate,
		EventTime:      req.ProposedTime,
		Location:       req.Location,
		City:           responder.City,
		State:          responder.State,
		ZipCode:        responder.ZipCode,
		MaxAttendees:   &maxAttendees,
		EventType:      "meetup",
		Attendees: []models.Attendee{
			{FamilyID: responder.FamilyID, FamilyName: responder.FamilyName, RSVPDate: time.Now().UTC()},
		},
		Status: models.EventConfirmed,
	}
}

// dispatch fires a notification without tying it to the request's fate.
func (w *Workflow) dispatch(familyName, targetUserID, status string) {
	go w.notifier.NotifyMeetupRequest(context.Background(), familyName, targetUserID, status)
}
