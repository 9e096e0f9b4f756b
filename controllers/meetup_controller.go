package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/villagefriends/network_backend/meetup"
	"github.com/villagefriends/network_backend/repository"
	"github.com/villagefriends/network_backend/websocket"
)

type MeetupController struct {
	workflow *meetup.Workflow
	meetups  *repository.MeetupRepository
	profiles *repository.ProfileRepository
	hub      *websocket.Hub
}

func NewMeetupController(workflow *meetup.Workflow, meetups *repository.MeetupRepository, profiles *repository.ProfileRepository, hub *websocket.Hub) *MeetupController {
	return &MeetupController{workflow: workflow, meetups: meetups, profiles: profiles, hub: hub}
}

type MeetupRequestInput struct {
	TargetFamilyID string `json:"target_family_id" binding:"required"`
	ProposedDate   string `json:"proposed_date" binding:"required"`
	ProposedTime   string `json:"proposed_time"`
	Location       string `json:"location"`
	Message        string `json:"message"`
}

type MeetupResponseInput struct {
	Status string `json:"status" binding:"required"`
}

// CreateRequest godoc
// @Summary Send a meetup request to another family
// @Tags meetups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MeetupRequestInput true "Meetup Request"
// @Success 201 {object} map[string]interface{} "Created request"
// @Failure 400 {object} map[string]string "Invalid input or missing profile"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/meetups [post]
func (ctrl *MeetupController) CreateRequest(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input MeetupRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := ctrl.workflow.CreateRequest(c.Request.Context(), userID, meetup.CreateInput{
		TargetFamilyID: input.TargetFamilyID,
		ProposedDate:   input.ProposedDate,
		ProposedTime:   input.ProposedTime,
		Location:       input.Location,
		Message:        input.Message,
	})
	switch {
	case errors.Is(err, meetup.ErrProfileRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	case errors.Is(err, meetup.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send a meetup request to your own family"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meetup request"})
		return
	}

	ctrl.hub.SendToFamily(req.TargetFamilyID, "meetup_request", req)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Meetup request sent",
		"request": req,
	})
}

// ListRequests returns the caller's incoming and outgoing requests.
func (ctrl *MeetupController) ListRequests(c *gin.Context) {
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

	incoming, err := ctrl.meetups.ListIncoming(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	outgoing, err := ctrl.meetups.ListOutgoing(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}

// Respond godoc
// @Summary Respond to a meetup request
// @Description Accept or decline a pending request; accepting schedules a confirmed event
// @Tags meetups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param response body MeetupResponseInput true "Response"
// @Success 200 {object} map[string]interface{} "Settled request"
// @Failure 400 {object} map[string]string "Invalid status or missing profile"
// @Failure 403 {object} map[string]string "Not the target family"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Already responded"
// @Router /api/meetups/{id}/respond [post]
func (ctrl *MeetupController) Respond(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input MeetupResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := ctrl.workflow.Respond(c.Request.Context(), userID, c.Param("id"), input.Status)
	switch {
	case errors.Is(err, meetup.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be accepted or declined"})
		return
	case errors.Is(err, meetup.ErrProfileRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	case errors.Is(err, meetup.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meetup request not found"})
		return
	case errors.Is(err, meetup.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the target family may respond"})
		return
	case errors.Is(err, meetup.ErrAlreadyResponded):
		c.JSON(http.StatusConflict, gin.H{"error": "Request has already been responded to"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to respond to request"})
		return
	}

	ctrl.hub.SendToFamily(req.RequesterFamilyID, "meetup_request", req)

	c.JSON(http.StatusOK, gin.H{
		"message": "Response recorded",
		"request": req,
	})
}
