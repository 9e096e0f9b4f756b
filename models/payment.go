package models

import (
	"time"
)

// Payment transaction states as reported by the checkout provider.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// PaymentTransaction records one checkout attempt for a subscription plan.
type PaymentTransaction struct {
	TransactionID string    `gorm:"primaryKey;size:32" json:"transaction_id"`
	SessionID     string    `gorm:"size:255;not null;unique" json:"session_id"`
	UserID        string    `gorm:"size:32;not null;index" json:"user_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `gorm:"size:8" json:"currency"`
	Plan          string    `gorm:"size:20" json:"plan"`
	PaymentStatus string    `gorm:"size:20;default:'pending'" json:"payment_status"`
	Status        string    `gorm:"size:20" json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IDVerification is a pending identity review request for a user.
type IDVerification struct {
	VerificationID string    `gorm:"primaryKey;size:32" json:"verification_id"`
	UserID         string    `gorm:"size:32;not null;index" json:"user_id"`
	Status         string    `gorm:"size:20;default:'pending'" json:"status"`
	SubmittedAt    time.Time `json:"submitted_at"`
}
