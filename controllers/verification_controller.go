package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/repository"
	"github.com/villagefriends/network_backend/utils"
)

type VerificationController struct {
	verifications *repository.VerificationRepository
}

func NewVerificationController(verifications *repository.VerificationRepository) *VerificationController {
	return &VerificationController{verifications: verifications}
}

// SubmitVerification queues an identity review for the caller. One pending
// submission at a time.
func (ctrl *VerificationController) SubmitVerification(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	existing, err := ctrl.verifications.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check verification"})
		return
	}
	if existing != nil && existing.Status == "pending" {
		c.JSON(http.StatusConflict, gin.H{"error": "Verification already pending"})
		return
	}

	v := models.IDVerification{
		VerificationID: utils.NewID("verify"),
		UserID:         userID,
		Status:         "pending",
		SubmittedAt:    time.Now().UTC(),
	}
	if err := ctrl.verifications.Insert(c.Request.Context(), &v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit verification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Verification submitted",
		"verification": v,
	})
}

// VerificationStatus returns the caller's latest verification state.
func (ctrl *VerificationController) VerificationStatus(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	v, err := ctrl.verifications.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch verification"})
		return
	}
	if v == nil {
		c.JSON(http.StatusOK, gin.H{"status": "unverified"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       v.Status,
		"verification": v,
	})
}
