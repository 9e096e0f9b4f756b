package models

import (
	"time"
)

// Kid is a child entry nested inside a family profile.
type Kid struct {
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Interests []string `json:"interests,omitempty"`
}

// FamilyProfile is the searchable unit of the network: one household per
// user. Latitude/Longitude are nil when the family has not shared a precise
// location; discovery then falls back to zip-code matching.
type FamilyProfile struct {
	FamilyID       string    `gorm:"primaryKey;size:32" json:"family_id"`
	UserID         string    `gorm:"size:32;not null;unique" json:"user_id"`
	FamilyName     string    `gorm:"size:255;not null" json:"family_name"`
	Bio            string    `gorm:"type:text" json:"bio,omitempty"`
	City           string    `gorm:"size:128" json:"city"`
	State          string    `gorm:"size:64" json:"state"`
	ZipCode        string    `gorm:"size:16;index" json:"zip_code"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	Interests      []string  `gorm:"serializer:json;type:jsonb" json:"interests"`
	Kids           []Kid     `gorm:"serializer:json;type:jsonb" json:"kids"`
	SearchRadius   int       `gorm:"default:25" json:"search_radius"`
	ProfilePicture string    `gorm:"size:512" json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasCoordinates reports whether the profile carries a precise location.
func (p *FamilyProfile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// HasKidInAgeRange reports whether any kid's age falls inside the closed
// interval; either bound may be nil (open).
func (p *FamilyProfile) HasKidInAgeRange(minAge, maxAge *int) bool {
	for _, kid := range p.Kids {
		if minAge != nil && kid.Age < *minAge {
			continue
		}
		if maxAge != nil && kid.Age > *maxAge {
			continue
		}
		return true
	}
	return false
}

// SharesInterest reports whether the profile's interest set intersects the
// given set. An empty query set matches everything.
func (p *FamilyProfile) SharesInterest(interests []string) bool {
	if len(interests) == 0 {
		return true
	}
	for _, want := range interests {
		for _, have := range p.Interests {
			if have == want {
				return true
			}
		}
	}
	return false
}
