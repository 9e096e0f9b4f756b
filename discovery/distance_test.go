package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(30.27, -97.74, 30.27, -97.74))
}

func TestHaversineSymmetry(t *testing.T) {
	a := Haversine(30.27, -97.74, 29.76, -95.37)
	b := Haversine(29.76, -95.37, 30.27, -97.74)
	assert.InDelta(t, a, b, 1e-9)
}

func TestHaversineNearbyPoints(t *testing.T) {
	// Two points in central Austin, roughly a mile apart.
	d := Haversine(30.27, -97.74, 30.26, -97.75)
	assert.InDelta(t, 0.9, d, 0.1)
}

func TestHaversineAustinToHouston(t *testing.T) {
	// Austin to Houston is about 145 miles as the crow flies.
	d := Haversine(30.2672, -97.7431, 29.7604, -95.3698)
	assert.InDelta(t, 145, d, 5)
}

func TestRoundMiles(t *testing.T) {
	assert.Equal(t, 0.9, roundMiles(0.913))
	assert.Equal(t, 1.0, roundMiles(0.95))
	assert.Equal(t, 12.3, roundMiles(12.34))
}
