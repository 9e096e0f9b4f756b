package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/models"
)

type stubPayments struct {
	updated map[string]string
}

func (s *stubPayments) Insert(ctx context.Context, txn *models.PaymentTransaction) error { return nil }

func (s *stubPayments) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	return nil, nil
}

func (s *stubPayments) UpdateStatus(ctx context.Context, sessionID, status string) error {
	if s.updated == nil {
		s.updated = map[string]string{}
	}
	s.updated[sessionID] = status
	return nil
}

type stubUsers struct {
	activated []string
}

func (s *stubUsers) ActivateSubscription(ctx context.Context, userID, plan string, endsAt time.Time) error {
	s.activated = append(s.activated, userID)
	return nil
}

func TestPlans(t *testing.T) {
	monthly, ok := Plans["monthly"]
	require.True(t, ok)
	assert.Equal(t, 9.99, monthly.Price)
	assert.Equal(t, 30, monthly.Duration)

	annual, ok := Plans["annual"]
	require.True(t, ok)
	assert.Equal(t, 89.99, annual.Price)
	assert.Equal(t, 365, annual.Duration)
}

func TestCreateCheckoutUnknownPlan(t *testing.T) {
	svc := NewService("sk_test_x", "whsec_x", &stubPayments{}, &stubUsers{}, zap.NewNop())

	_, err := svc.CreateCheckout(context.Background(), "u1", "lifetime", "https://x/ok", "https://x/no")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	payments := &stubPayments{}
	users := &stubUsers{}
	svc := NewService("sk_test_x", "whsec_x", payments, users, zap.NewNop())

	err := svc.HandleWebhook(context.Background(), []byte(`{"type":"checkout.session.completed"}`), "t=1,v1=bad")
	assert.Error(t, err)
	assert.Empty(t, payments.updated)
	assert.Empty(t, users.activated)
}
