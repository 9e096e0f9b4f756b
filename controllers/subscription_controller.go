package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/billing"
	"github.com/villagefriends/network_backend/repository"
)

type SubscriptionController struct {
	billing  *billing.Service
	users    *repository.UserRepository
	payments *repository.PaymentRepository
	logger   *zap.Logger
}

func NewSubscriptionController(svc *billing.Service, users *repository.UserRepository, payments *repository.PaymentRepository, logger *zap.Logger) *SubscriptionController {
	return &SubscriptionController{billing: svc, users: users, payments: payments, logger: logger}
}

type CheckoutInput struct {
	Plan       string `json:"plan" binding:"required"`
	SuccessURL string `json:"success_url" binding:"required"`
	CancelURL  string `json:"cancel_url" binding:"required"`
}

// GetPlans lists the purchasable membership tiers.
func (ctrl *SubscriptionController) GetPlans(c *gin.Context) {
	plans := make([]billing.Plan, 0, len(billing.Plans))
	for _, p := range billing.Plans {
		plans = append(plans, p)
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// CreateCheckout opens a hosted checkout session for a plan.
func (ctrl *SubscriptionController) CreateCheckout(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkout, err := ctrl.billing.CreateCheckout(c.Request.Context(), userID, input.Plan, input.SuccessURL, input.CancelURL)
	if errors.Is(err, billing.ErrUnknownPlan) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown subscription plan"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkout": checkout})
}

// GetCheckoutStatus reports the payment state of a checkout session.
func (ctrl *SubscriptionController) GetCheckoutStatus(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	sessionID := c.Param("sessionId")

	txn, err := ctrl.payments.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transaction"})
		return
	}
	if txn == nil || txn.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout session not found"})
		return
	}

	status, err := ctrl.billing.SessionStatus(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch checkout status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":     sessionID,
		"payment_status": status,
		"plan":           txn.Plan,
	})
}

// MySubscription returns the caller's subscription state.
func (ctrl *SubscriptionController) MySubscription(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"subscription_status":  user.SubscriptionStatus,
		"subscription_plan":    user.SubscriptionPlan,
		"trial_ends_at":        user.TrialEndsAt,
		"subscription_ends_at": user.SubscriptionEndsAt,
		"premium_access":       user.HasPremiumAccess(),
	})
}

// Webhook receives checkout events from the payment provider. Signature
// verification happens inside the billing service.
func (ctrl *SubscriptionController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := ctrl.billing.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		ctrl.logger.Warn("webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
