package models

import (
	"time"
)

type Message struct {
	MessageID         string    `gorm:"primaryKey;size:32" json:"message_id"`
	SenderFamilyID    string    `gorm:"size:32;not null;index" json:"sender_family_id"`
	SenderFamilyName  string    `gorm:"size:255" json:"sender_family_name"`
	RecipientFamilyID string    `gorm:"size:32;not null;index" json:"recipient_family_id"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	Read              bool      `json:"read"`
	CreatedAt         time.Time `json:"created_at"`
}
