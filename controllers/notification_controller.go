package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/notifications"
	"github.com/villagefriends/network_backend/repository"
)

// A user may register at most this many push endpoints (one per device).
const maxSubscriptionsPerUser = 10

type NotificationController struct {
	subs       *repository.PushSubscriptionRepository
	users      *repository.UserRepository
	dispatcher *notifications.Dispatcher
	vapidKey   string
}

func NewNotificationController(subs *repository.PushSubscriptionRepository, users *repository.UserRepository, dispatcher *notifications.Dispatcher, vapidPublicKey string) *NotificationController {
	return &NotificationController{subs: subs, users: users, dispatcher: dispatcher, vapidKey: vapidPublicKey}
}

type SubscribeInput struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

type UnsubscribeInput struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// VapidKey hands the browser the public key it needs to subscribe.
func (ctrl *NotificationController) VapidKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": ctrl.vapidKey})
}

// Subscribe registers a browser push endpoint for the caller.
func (ctrl *NotificationController) Subscribe(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input SubscribeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := ctrl.subs.CountByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register subscription"})
		return
	}
	if count >= maxSubscriptionsPerUser {
		c.JSON(http.StatusConflict, gin.H{"error": "Too many registered devices"})
		return
	}

	sub := models.PushSubscription{
		UserID:   userID,
		Endpoint: input.Endpoint,
		P256dh:   input.Keys.P256dh,
		Auth:     input.Keys.Auth,
	}
	if err := ctrl.subs.Create(c.Request.Context(), &sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register subscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscription registered"})
}

// Unsubscribe removes a push endpoint for the caller.
func (ctrl *NotificationController) Unsubscribe(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input UnsubscribeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.subs.Delete(c.Request.Context(), userID, input.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription removed"})
}

// GetPreferences returns the caller's notification preferences.
func (ctrl *NotificationController) GetPreferences(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	user, err := ctrl.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": user.Preferences})
}

// UpdatePreferences replaces the caller's notification preferences.
func (ctrl *NotificationController) UpdatePreferences(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var prefs models.NotificationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.users.UpdatePreferences(c.Request.Context(), userID, prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Preferences updated",
		"preferences": prefs,
	})
}

// SendTest pushes a test notification to the caller's devices.
func (ctrl *NotificationController) SendTest(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	ctrl.dispatcher.SendTest(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent"})
}
