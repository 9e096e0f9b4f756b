package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestHasKidInAgeRange(t *testing.T) {
	profile := FamilyProfile{Kids: []Kid{{Name: "A", Age: 4}, {Name: "B", Age: 11}}}

	assert.True(t, profile.HasKidInAgeRange(intPtr(3), intPtr(6)))
	assert.True(t, profile.HasKidInAgeRange(intPtr(10), nil))
	assert.True(t, profile.HasKidInAgeRange(nil, nil))
	assert.False(t, profile.HasKidInAgeRange(intPtr(5), intPtr(9)))

	empty := FamilyProfile{}
	assert.False(t, empty.HasKidInAgeRange(nil, nil))
}

func TestSharesInterest(t *testing.T) {
	profile := FamilyProfile{Interests: []string{"hiking", "board games"}}

	assert.True(t, profile.SharesInterest(nil))
	assert.True(t, profile.SharesInterest([]string{"hiking"}))
	assert.True(t, profile.SharesInterest([]string{"soccer", "board games"}))
	assert.False(t, profile.SharesInterest([]string{"soccer"}))
}

func TestEventCapacity(t *testing.T) {
	two := 2
	event := Event{MaxAttendees: &two, Attendees: []Attendee{{FamilyID: "f1"}}}

	assert.True(t, event.HasAttendee("f1"))
	assert.False(t, event.HasAttendee("f2"))
	assert.False(t, event.IsFull())

	event.Attendees = append(event.Attendees, Attendee{FamilyID: "f2"})
	assert.True(t, event.IsFull())

	unbounded := Event{Attendees: make([]Attendee, 50)}
	assert.False(t, unbounded.IsFull())
}

func TestGroupRoles(t *testing.T) {
	group := CoopGroup{
		OwnerFamilyID: "f1",
		Members: []GroupMember{
			{FamilyID: "f1", Role: RoleOwner},
			{FamilyID: "f2", Role: RoleAdmin},
			{FamilyID: "f3", Role: RoleMember},
		},
	}

	assert.True(t, group.CanModerate("f1"))
	assert.True(t, group.CanModerate("f2"))
	assert.False(t, group.CanModerate("f3"))
	assert.False(t, group.CanModerate("f9"))
	assert.Nil(t, group.Member("f9"))
}

func TestGroupIsFull(t *testing.T) {
	three := 3
	group := CoopGroup{MaxMembers: &three, Members: make([]GroupMember, 3)}
	assert.True(t, group.IsFull())

	open := CoopGroup{Members: make([]GroupMember, 100)}
	assert.False(t, open.IsFull())
}

func TestHasPremiumAccess(t *testing.T) {
	active := User{SubscriptionStatus: SubscriptionActive}
	assert.True(t, active.HasPremiumAccess())

	future := time.Now().Add(24 * time.Hour)
	trial := User{SubscriptionStatus: SubscriptionTrial, TrialEndsAt: &future}
	assert.True(t, trial.HasPremiumAccess())

	past := time.Now().Add(-24 * time.Hour)
	expired := User{SubscriptionStatus: SubscriptionTrial, TrialEndsAt: &past}
	assert.False(t, expired.HasPremiumAccess())

	noTrial := User{SubscriptionStatus: SubscriptionTrial}
	assert.False(t, noTrial.HasPremiumAccess())
}

func TestValidatePassword(t *testing.T) {
	user := User{Password: "hunter22"}
	assert.NoError(t, user.BeforeSave(nil))
	assert.NotEqual(t, "hunter22", user.Password)

	assert.NoError(t, user.ValidatePassword("hunter22"))
	assert.Error(t, user.ValidatePassword("wrong"))

	// A second save must not re-hash.
	hashed := user.Password
	assert.NoError(t, user.BeforeSave(nil))
	assert.Equal(t, hashed, user.Password)
}
