package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/notifications"
	"github.com/villagefriends/network_backend/repository"
	"github.com/villagefriends/network_backend/utils"
	"github.com/villagefriends/network_backend/websocket"
)

type MessageController struct {
	messages   *repository.MessageRepository
	profiles   *repository.ProfileRepository
	dispatcher *notifications.Dispatcher
	hub        *websocket.Hub
}

func NewMessageController(messages *repository.MessageRepository, profiles *repository.ProfileRepository, dispatcher *notifications.Dispatcher, hub *websocket.Hub) *MessageController {
	return &MessageController{messages: messages, profiles: profiles, dispatcher: dispatcher, hub: hub}
}

type SendMessageInput struct {
	RecipientFamilyID string `json:"recipient_family_id" binding:"required"`
	Content           string `json:"content" binding:"required"`
}

// Conversation summarizes one message thread for the inbox view.
type Conversation struct {
	FamilyID    string          `json:"family_id"`
	FamilyName  string          `json:"family_name"`
	LastMessage *models.Message `json:"last_message"`
	UnreadCount int             `json:"unread_count"`
}

// SendMessage delivers a direct message: stored, pushed over any open
// websocket, and announced by push notification.
func (ctrl *MessageController) SendMessage(c *gin.Context) {
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

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipient, err := ctrl.profiles.GetByID(c.Request.Context(), input.RecipientFamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipient"})
		return
	}
	if recipient == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient family not found"})
		return
	}

	msg := models.Message{
		MessageID:         utils.NewID("msg"),
		SenderFamilyID:    profile.FamilyID,
		SenderFamilyName:  profile.FamilyName,
		RecipientFamilyID: recipient.FamilyID,
		Content:           input.Content,
		CreatedAt:         time.Now().UTC(),
	}

	if err := ctrl.messages.Insert(c.Request.Context(), &msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	ctrl.hub.SendToFamily(recipient.FamilyID, "message", msg)
	go ctrl.dispatcher.NotifyNewMessage(context.Background(), profile.FamilyName, recipient.UserID, msg.Content)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

// ListMessages returns all messages the caller's family sent or received.
func (ctrl *MessageController) ListMessages(c *gin.Context) {
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

	msgs, err := ctrl.messages.ListForFamily(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}

// Conversations groups the caller's messages into threads, newest first,
// with per-thread unread counts.
func (ctrl *MessageController) Conversations(c *gin.Context) {
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

	msgs, err := ctrl.messages.ListForFamily(c.Request.Context(), profile.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	// Messages arrive newest first, so the first sighting of a thread
	// carries its latest message.
	byFamily := make(map[string]*Conversation)
	var order []string
	for i := range msgs {
		other := msgs[i].SenderFamilyID
		name := msgs[i].SenderFamilyName
		if other == profile.FamilyID {
			other = msgs[i].RecipientFamilyID
			name = ""
		}

		conv, ok := byFamily[other]
		if !ok {
			conv = &Conversation{FamilyID: other, FamilyName: name, LastMessage: &msgs[i]}
			byFamily[other] = conv
			order = append(order, other)
		}
		if conv.FamilyName == "" && name != "" {
			conv.FamilyName = name
		}
		if msgs[i].RecipientFamilyID == profile.FamilyID && !msgs[i].Read {
			conv.UnreadCount++
		}
	}

	missing := make([]string, 0)
	for _, id := range order {
		if byFamily[id].FamilyName == "" {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		if named, err := ctrl.profiles.GetManyByIDs(c.Request.Context(), missing); err == nil {
			for _, id := range missing {
				if p, ok := named[id]; ok {
					byFamily[id].FamilyName = p.FamilyName
				}
			}
		}
	}

	conversations := make([]Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, *byFamily[id])
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetConversation returns the thread with another family, oldest first,
// and marks received messages read.
func (ctrl *MessageController) GetConversation(c *gin.Context) {
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

	msgs, err := ctrl.messages.Conversation(c.Request.Context(), profile.FamilyID, c.Param("familyId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}
