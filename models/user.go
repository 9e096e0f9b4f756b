package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Subscription states a user account moves through.
const (
	SubscriptionTrial  = "trial"
	SubscriptionActive = "active"
)

// NotificationPreferences controls which push notification categories a
// user receives. All categories default to enabled.
type NotificationPreferences struct {
	Messages       bool `json:"messages"`
	Events         bool `json:"events"`
	MeetupRequests bool `json:"meetup_requests"`
	GroupUpdates   bool `json:"group_updates"`
}

// DefaultNotificationPreferences returns the opt-in defaults.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Messages:       true,
		Events:         true,
		MeetupRequests: true,
		GroupUpdates:   true,
	}
}

type User struct {
	UserID             string                  `gorm:"primaryKey;size:32" json:"user_id"`
	Email              string                  `gorm:"size:255;not null;unique" json:"email"`
	Name               string                  `gorm:"size:255;not null" json:"name"`
	Password           string                  `gorm:"size:255;not null" json:"-"`
	Picture            string                  `gorm:"size:512" json:"picture,omitempty"`
	EmailVerified      bool                    `json:"email_verified"`
	IDVerified         bool                    `json:"id_verified"`
	SubscriptionStatus string                  `gorm:"size:20;default:'trial'" json:"subscription_status"`
	SubscriptionPlan   string                  `gorm:"size:20" json:"subscription_plan,omitempty"`
	TrialEndsAt        *time.Time              `json:"trial_ends_at,omitempty"`
	SubscriptionEndsAt *time.Time              `json:"subscription_ends_at,omitempty"`
	Preferences        NotificationPreferences `gorm:"serializer:json;type:jsonb" json:"notification_preferences"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// BeforeSave hashes the password before saving to the database
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password != "" && !isBcryptHash(u.Password) {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// ValidatePassword checks if the provided password matches the stored hash
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// HasPremiumAccess reports whether the user may use co-op group features:
// an active subscription, or a trial that has not yet run out.
func (u *User) HasPremiumAccess() bool {
	if u.SubscriptionStatus == SubscriptionActive {
		return true
	}
	return u.SubscriptionStatus == SubscriptionTrial &&
		u.TrialEndsAt != nil && u.TrialEndsAt.After(time.Now())
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (s[:4] == "$2a$" || s[:4] == "$2b$" || s[:4] == "$2y$")
}
