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

type GroupController struct {
	groups     *repository.GroupRepository
	users      *repository.UserRepository
	profiles   *repository.ProfileRepository
	events     *repository.EventRepository
	dispatcher *notifications.Dispatcher
}

func NewGroupController(groups *repository.GroupRepository, users *repository.UserRepository, profiles *repository.ProfileRepository, events *repository.EventRepository, dispatcher *notifications.Dispatcher) *GroupController {
	return &GroupController{groups: groups, users: users, profiles: profiles, events: events, dispatcher: dispatcher}
}

type GroupInput struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCode          string   `json:"zip_code"`
	GroupType        string   `json:"group_type"`
	FocusAreas       []string `json:"focus_areas"`
	AgeRange         string   `json:"age_range"`
	MeetingFrequency string   `json:"meeting_frequency"`
	MaxMembers       *int     `json:"max_members"`
	IsPrivate        bool     `json:"is_private"`
}

type RoleInput struct {
	FamilyID string `json:"family_id" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin member"`
}

type AnnouncementInput struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Pinned  bool   `json:"pinned"`
}

// requireMember resolves the caller's premium-gated group identity: the
// user must hold premium access and own a family profile.
func (ctrl *GroupController) requireMember(c *gin.Context) *models.FamilyProfile {
	userID := c.MustGet("userID").(string)

	user, err := ctrl.users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return nil
	}
	if !user.HasPremiumAccess() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Co-op groups require an active membership"})
		return nil
	}

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return nil
	}
	if profile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return nil
	}
	return profile
}

// CreateGroup creates a co-op group owned by the caller's family.
func (ctrl *GroupController) CreateGroup(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groupType := input.GroupType
	if groupType == "" {
		groupType = "co-op"
	}

	group := models.CoopGroup{
		GroupID:          utils.NewID("group"),
		OwnerFamilyID:    profile.FamilyID,
		OwnerFamilyName:  profile.FamilyName,
		Name:             input.Name,
		Description:      input.Description,
		City:             input.City,
		State:            input.State,
		ZipCode:          input.ZipCode,
		GroupType:        groupType,
		FocusAreas:       input.FocusAreas,
		AgeRange:         input.AgeRange,
		MeetingFrequency: input.MeetingFrequency,
		MaxMembers:       input.MaxMembers,
		IsPrivate:        input.IsPrivate,
		Members: []models.GroupMember{
			{
				FamilyID:   profile.FamilyID,
				FamilyName: profile.FamilyName,
				Role:       models.RoleOwner,
				JoinedAt:   time.Now().UTC(),
			},
		},
		MemberCount: 1,
	}

	if err := ctrl.groups.Insert(c.Request.Context(), &group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Group created successfully",
		"group":   group,
	})
}

// ListGroups returns public groups filtered by city and type.
func (ctrl *GroupController) ListGroups(c *gin.Context) {
	filter := repository.GroupFilter{
		City:       c.Query("city"),
		GroupType:  c.Query("group_type"),
		PublicOnly: true,
	}

	groups, err := ctrl.groups.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}

// MyGroups returns groups the caller's family owns or belongs to.
func (ctrl *GroupController) MyGroups(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	owned, err := ctrl.groups.ListOwnedBy(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	member, err := ctrl.groups.ListMemberOf(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"owned":  owned,
		"member": member,
	})
}

// GetGroup returns a single group. Join requests are only shown to
// moderators.
func (ctrl *GroupController) GetGroup(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID); err != nil || profile == nil || !group.CanModerate(profile.FamilyID) {
		group.JoinRequests = nil
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

// UpdateGroup edits group settings. Moderators only.
func (ctrl *GroupController) UpdateGroup(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if !group.CanModerate(profile.FamilyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only group admins may edit the group"})
		return
	}

	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group.Name = input.Name
	group.Description = input.Description
	group.City = input.City
	group.State = input.State
	group.ZipCode = input.ZipCode
	if input.GroupType != "" {
		group.GroupType = input.GroupType
	}
	group.FocusAreas = input.FocusAreas
	group.AgeRange = input.AgeRange
	group.MeetingFrequency = input.MeetingFrequency
	group.MaxMembers = input.MaxMembers
	group.IsPrivate = input.IsPrivate

	if err := ctrl.groups.Update(c.Request.Context(), group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group updated successfully",
		"group":   group,
	})
}

// DeleteGroup removes a group. Owner only.
func (ctrl *GroupController) DeleteGroup(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if group.OwnerFamilyID != profile.FamilyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may delete the group"})
		return
	}

	if err := ctrl.groups.Delete(c.Request.Context(), group.GroupID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

// JoinGroup joins a public group immediately, or queues a join request on
// a private one.
func (ctrl *GroupController) JoinGroup(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if group.IsPrivate {
		err = ctrl.groups.QueueJoinRequest(c.Request.Context(), group.GroupID, models.JoinRequest{
			FamilyID:    profile.FamilyID,
			FamilyName:  profile.FamilyName,
			RequestedAt: time.Now().UTC(),
		})
		switch {
		case errors.Is(err, repository.ErrAlreadyMember):
			c.JSON(http.StatusConflict, gin.H{"error": "Already a member or request pending"})
		case errors.Is(err, repository.ErrGroupFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Group is full"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request to join"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "Join request sent"})
		}
		return
	}

	err = ctrl.groups.AddMember(c.Request.Context(), group.GroupID, models.GroupMember{
		FamilyID:   profile.FamilyID,
		FamilyName: profile.FamilyName,
		Role:       models.RoleMember,
		JoinedAt:   time.Now().UTC(),
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member of this group"})
	case errors.Is(err, repository.ErrGroupFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Group is full"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join group"})
	default:
		ctrl.notifyGroup(group, "new_member", profile.FamilyName+" joined the group")
		c.JSON(http.StatusOK, gin.H{"message": "Joined group successfully"})
	}
}

// LeaveGroup removes the caller's family from a group. The owner must
// transfer ownership first.
func (ctrl *GroupController) LeaveGroup(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if group.OwnerFamilyID == profile.FamilyID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transfer ownership before leaving the group"})
		return
	}

	if err := ctrl.groups.RemoveMember(c.Request.Context(), group.GroupID, profile.FamilyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left group successfully"})
}

// ApproveJoinRequest admits a queued family. Moderators only.
func (ctrl *GroupController) ApproveJoinRequest(c *gin.Context) {
	ctrl.settleJoinRequest(c, true)
}

// RejectJoinRequest drops a queued family. Moderators only.
func (ctrl *GroupController) RejectJoinRequest(c *gin.Context) {
	ctrl.settleJoinRequest(c, false)
}

func (ctrl *GroupController) settleJoinRequest(c *gin.Context, approve bool) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if !group.CanModerate(profile.FamilyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only group admins may manage join requests"})
		return
	}

	familyID := c.Param("familyId")
	if approve {
		err = ctrl.groups.ApproveJoinRequest(c.Request.Context(), group.GroupID, familyID)
	} else {
		err = ctrl.groups.RejectJoinRequest(c.Request.Context(), group.GroupID, familyID)
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Join request not found"})
	case errors.Is(err, repository.ErrGroupFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Group is full"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process join request"})
	case approve:
		ctrl.notifyGroup(group, "new_member", "A new family joined the group")
		c.JSON(http.StatusOK, gin.H{"message": "Join request approved"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Join request rejected"})
	}
}

// UpdateMemberRole promotes or demotes a member. Owner only.
func (ctrl *GroupController) UpdateMemberRole(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if group.OwnerFamilyID != profile.FamilyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may change roles"})
		return
	}

	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = ctrl.groups.UpdateMemberRole(c.Request.Context(), group.GroupID, input.FamilyID, input.Role)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
	}
}

type TransferInput struct {
	FamilyID string `json:"family_id" binding:"required"`
}

// TransferOwnership hands the group to another member. Owner only.
func (ctrl *GroupController) TransferOwnership(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if group.OwnerFamilyID != profile.FamilyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may transfer ownership"})
		return
	}

	var input TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = ctrl.groups.TransferOwnership(c.Request.Context(), group.GroupID, input.FamilyID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer ownership"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Ownership transferred successfully"})
	}
}

// RemoveMember expels a family from the group. Moderators only; the owner
// cannot be removed.
func (ctrl *GroupController) RemoveMember(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if !group.CanModerate(profile.FamilyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only group admins may remove members"})
		return
	}

	familyID := c.Param("familyId")
	if familyID == group.OwnerFamilyID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The owner cannot be removed"})
		return
	}

	if err := ctrl.groups.RemoveMember(c.Request.Context(), group.GroupID, familyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// CreateGroupEvent creates an event on behalf of the group. Members only.
func (ctrl *GroupController) CreateGroupEvent(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if group.Member(profile.FamilyID) == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only group members may create group events"})
		return
	}

	var input EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventType := input.EventType
	if eventType == "" {
		eventType = "group"
	}

	event := models.Event{
		EventID:        utils.NewID("event"),
		GroupID:        group.GroupID,
		GroupName:      group.Name,
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

	ctrl.notifyGroup(group, "event", event.Title)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   event,
	})
}

// ListGroupEvents returns events attached to a group.
func (ctrl *GroupController) ListGroupEvents(c *gin.Context) {
	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	events, err := ctrl.events.ListForGroup(c.Request.Context(), group.GroupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// CreateAnnouncement posts an announcement to the group. Moderators only.
func (ctrl *GroupController) CreateAnnouncement(c *gin.Context) {
	profile := ctrl.requireMember(c)
	if profile == nil {
		return
	}

	group, err := ctrl.groups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if !group.CanModerate(profile.FamilyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only group admins may post announcements"})
		return
	}

	var input AnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ann := models.Announcement{
		AnnouncementID:   utils.NewID("ann"),
		Title:            input.Title,
		Content:          input.Content,
		Pinned:           input.Pinned,
		AuthorFamilyID:   profile.FamilyID,
		AuthorFamilyName: profile.FamilyName,
		CreatedAt:        time.Now().UTC(),
	}

	if err := ctrl.groups.AddAnnouncement(c.Request.Context(), group.GroupID, ann); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post announcement"})
		return
	}

	ctrl.notifyGroup(group, "announcement", input.Title)

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Announcement posted",
		"announcement": ann,
	})
}

// notifyGroup pushes a group update to every member's user, best effort.
func (ctrl *GroupController) notifyGroup(group *models.CoopGroup, updateType, details string) {
	familyIDs := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		familyIDs = append(familyIDs, m.FamilyID)
	}
	name := group.Name

	go func() {
		ctx := context.Background()
		profiles, err := ctrl.profiles.GetManyByIDs(ctx, familyIDs)
		if err != nil {
			return
		}
		userIDs := make([]string, 0, len(profiles))
		for _, p := range profiles {
			userIDs = append(userIDs, p.UserID)
		}
		ctrl.dispatcher.NotifyGroupUpdate(ctx, name, userIDs, updateType, details)
	}()
}
