package models

import (
	"time"
)

// PushSubscription stores one browser push endpoint for a user. A user may
// hold several (one per device). Endpoint plus user is unique; the transport
// deletes rows it learns are permanently dead (404/410 from the push
// service).
type PushSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:32;not null;index:idx_user_endpoint,unique" json:"user_id"`
	Endpoint  string    `gorm:"size:1024;not null;index:idx_user_endpoint,unique" json:"endpoint"`
	P256dh    string    `gorm:"size:255;not null" json:"p256dh"`
	Auth      string    `gorm:"size:255;not null" json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
