package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/utils"
)

// Plan is a purchasable membership tier.
type Plan struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration int     `json:"duration_days"`
}

// Plans lists the available membership tiers.
var Plans = map[string]Plan{
	"monthly": {ID: "monthly", Name: "Monthly Membership", Price: 9.99, Duration: 30},
	"annual":  {ID: "annual", Name: "Annual Membership", Price: 89.99, Duration: 365},
}

// ErrUnknownPlan is returned for a plan id outside Plans.
var ErrUnknownPlan = errors.New("unknown subscription plan")

// PaymentStore records checkout transactions.
type PaymentStore interface {
	Insert(ctx context.Context, txn *models.PaymentTransaction) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	UpdateStatus(ctx context.Context, sessionID, status string) error
}

// UserStore activates subscriptions once a checkout completes.
type UserStore interface {
	ActivateSubscription(ctx context.Context, userID, plan string, endsAt time.Time) error
}

// Service drives checkout sessions against Stripe.
type Service struct {
	payments      PaymentStore
	users         UserStore
	webhookSecret string
	logger        *zap.Logger
}

// NewService configures the Stripe client and returns a billing service.
func NewService(apiKey, webhookSecret string, payments PaymentStore, users UserStore, logger *zap.Logger) *Service {
	stripe.Key = apiKey
	return &Service{
		payments:      payments,
		users:         users,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// Checkout is the hosted payment page handed back to the client.
type Checkout struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckout opens a Stripe checkout session for a plan and records
// the pending transaction.
func (s *Service) CreateCheckout(ctx context.Context, userID, planID, successURL, cancelURL string) (*Checkout, error) {
	plan, ok := Plans[planID]
	if !ok {
		return nil, ErrUnknownPlan
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name),
					},
					UnitAmount: stripe.Int64(int64(plan.Price * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("plan", plan.ID)

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}

	txn := &models.PaymentTransaction{
		TransactionID: utils.NewID("txn"),
		SessionID:     sess.ID,
		UserID:        userID,
		Amount:        plan.Price,
		Currency:      "usd",
		Plan:          plan.ID,
		PaymentStatus: models.PaymentPending,
	}
	if err := s.payments.Insert(ctx, txn); err != nil {
		return nil, err
	}

	return &Checkout{SessionID: sess.ID, URL: sess.URL}, nil
}

// SessionStatus reports the current payment state of a checkout session.
// A session seen paid for the first time activates the subscription, so
// polling clients converge even when the webhook never arrives.
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (string, error) {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return "", err
	}

	status := string(sess.PaymentStatus)
	if status != string(stripe.CheckoutSessionPaymentStatusPaid) {
		return status, nil
	}

	txn, err := s.payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if txn != nil && txn.PaymentStatus != models.PaymentPaid {
		if err := s.activate(ctx, sessionID, txn.UserID, txn.Plan); err != nil {
			return "", err
		}
	}
	return status, nil
}

// HandleWebhook verifies and applies a Stripe event. A completed
// checkout marks the transaction paid and activates the subscription.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return err
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}

	userID := sess.Metadata["user_id"]
	planID := sess.Metadata["plan"]
	if _, ok := Plans[planID]; !ok {
		s.logger.Warn("webhook for unknown plan",
			zap.String("session_id", sess.ID), zap.String("plan", planID))
		return nil
	}

	return s.activate(ctx, sess.ID, userID, planID)
}

// activate marks the transaction paid and grants the plan's duration.
func (s *Service) activate(ctx context.Context, sessionID, userID, planID string) error {
	plan, ok := Plans[planID]
	if !ok {
		return ErrUnknownPlan
	}

	if err := s.payments.UpdateStatus(ctx, sessionID, models.PaymentPaid); err != nil {
		return err
	}

	endsAt := time.Now().UTC().AddDate(0, 0, plan.Duration)
	if err := s.users.ActivateSubscription(ctx, userID, plan.ID, endsAt); err != nil {
		return err
	}

	s.logger.Info("subscription activated",
		zap.String("user_id", userID), zap.String("plan", plan.ID))
	return nil
}
