package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagefriends/network_backend/models"
)

type fakeProfileStore struct {
	profiles []models.FamilyProfile
}

func (s *fakeProfileStore) Search(ctx context.Context, q Query) ([]models.FamilyProfile, error) {
	var out []models.FamilyProfile
	for i := range s.profiles {
		if q.Matches(&s.profiles[i]) {
			out = append(out, s.profiles[i])
		}
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func austinProfile(userID, familyID, name string, lat, lon *float64) models.FamilyProfile {
	return models.FamilyProfile{
		FamilyID:   familyID,
		UserID:     userID,
		FamilyName: name,
		City:       "Austin",
		State:      "TX",
		ZipCode:    "78701",
		Latitude:   lat,
		Longitude:  lon,
	}
}

func TestFindNearbyExcludesRequester(t *testing.T) {
	store := &fakeProfileStore{profiles: []models.FamilyProfile{
		austinProfile("u1", "f1", "Requester", ptr(30.27), ptr(-97.74)),
		austinProfile("u2", "f2", "Neighbor", ptr(30.26), ptr(-97.75)),
	}}
	engine := NewEngine(store)
	requester := store.profiles[0]

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].FamilyID)
}

func TestFindNearbyRanksByDistance(t *testing.T) {
	store := &fakeProfileStore{profiles: []models.FamilyProfile{
		austinProfile("u2", "f2", "Far", ptr(30.40), ptr(-97.90)),
		austinProfile("u3", "f3", "Near", ptr(30.26), ptr(-97.75)),
	}}
	engine := NewEngine(store)
	requester := austinProfile("u1", "f1", "Requester", ptr(30.27), ptr(-97.74))

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "f3", results[0].FamilyID)
	assert.Equal(t, "f2", results[1].FamilyID)
	require.NotNil(t, results[0].Distance)
	assert.InDelta(t, 0.9, *results[0].Distance, 0.1)
}

func TestFindNearbyRadiusCut(t *testing.T) {
	store := &fakeProfileStore{profiles: []models.FamilyProfile{
		// Houston is far outside any Austin radius.
		{FamilyID: "f2", UserID: "u2", City: "Austin", State: "TX", ZipCode: "78701",
			Latitude: ptr(29.76), Longitude: ptr(-95.37)},
		austinProfile("u3", "f3", "Near", ptr(30.26), ptr(-97.75)),
	}}
	engine := NewEngine(store)
	requester := austinProfile("u1", "f1", "Requester", ptr(30.27), ptr(-97.74))

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{Radius: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f3", results[0].FamilyID)
}

func TestFindNearbySameZipWithoutCoordinatesStays(t *testing.T) {
	store := &fakeProfileStore{profiles: []models.FamilyProfile{
		austinProfile("u2", "f2", "Ranked", ptr(30.26), ptr(-97.75)),
		austinProfile("u3", "f3", "Unranked", nil, nil),
	}}
	engine := NewEngine(store)
	requester := austinProfile("u1", "f1", "Requester", ptr(30.27), ptr(-97.74))

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Unranked candidates sort after every ranked one.
	assert.Equal(t, "f2", results[0].FamilyID)
	assert.NotNil(t, results[0].Distance)
	assert.Equal(t, "f3", results[1].FamilyID)
	assert.Nil(t, results[1].Distance)
}

func TestFindNearbyOtherZipWithoutCoordinatesDropped(t *testing.T) {
	other := austinProfile("u2", "f2", "Elsewhere", nil, nil)
	other.ZipCode = "78745"
	store := &fakeProfileStore{profiles: []models.FamilyProfile{other}}
	engine := NewEngine(store)
	requester := austinProfile("u1", "f1", "Requester", ptr(30.27), ptr(-97.74))

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindNearbyAgeFilter(t *testing.T) {
	young := austinProfile("u2", "f2", "Young", ptr(30.26), ptr(-97.75))
	young.Kids = []models.Kid{{Name: "A", Age: 9}}
	teen := austinProfile("u3", "f3", "Teen", ptr(30.26), ptr(-97.75))
	teen.Kids = []models.Kid{{Name: "B", Age: 15}}

	store := &fakeProfileStore{profiles: []models.FamilyProfile{young, teen}}
	engine := NewEngine(store)
	requester := austinProfile("u1", "f1", "Requester", ptr(30.27), ptr(-97.74))

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{
		MinAge: ptr(6), MaxAge: ptr(12),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].FamilyID)
}

func TestFindNearbyInterestsAnyMatch(t *testing.T) {
	hiking := austinProfile("u2", "f2", "Hikers", ptr(30.26), ptr(-97.75))
	hiking.Interests = []string{"hiking", "camping"}
	chess := austinProfile("u3", "f3", "Chess", ptr(30.26), ptr(-97.75))
	chess.Interests = []string{"chess"}

	store := &fakeProfileStore{profiles: []models.FamilyProfile{hiking, chess}}
	engine := NewEngine(store)
	requester := austinProfile("u1", "f1", "Requester", ptr(30.27), ptr(-97.74))

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{
		Interests: []string{"camping", "soccer"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].FamilyID)
}

func TestFindNearbyExplicitZipWins(t *testing.T) {
	inZip := austinProfile("u2", "f2", "InZip", nil, nil)
	inZip.ZipCode = "78745"
	outZip := austinProfile("u3", "f3", "OutZip", nil, nil)

	store := &fakeProfileStore{profiles: []models.FamilyProfile{inZip, outZip}}
	engine := NewEngine(store)
	// No coordinates on the requester, so the filter zip drives the cut.
	requester := austinProfile("u1", "f1", "Requester", nil, nil)

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{ZipCode: "78745"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].FamilyID)
}

func TestFindNearbyCityStateFallback(t *testing.T) {
	austin := austinProfile("u2", "f2", "Austin", nil, nil)
	dallas := models.FamilyProfile{FamilyID: "f3", UserID: "u3", City: "Dallas", State: "TX", ZipCode: "75201"}

	store := &fakeProfileStore{profiles: []models.FamilyProfile{austin, dallas}}
	engine := NewEngine(store)

	results, err := engine.FindNearby(context.Background(), "u1", nil, Filters{City: "austin", State: "tx"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].FamilyID)
}

func TestFindNearbyOwnZipWhenNoCoordinates(t *testing.T) {
	sameZip := austinProfile("u2", "f2", "SameZip", nil, nil)
	otherZip := austinProfile("u3", "f3", "OtherZip", nil, nil)
	otherZip.ZipCode = "78745"

	store := &fakeProfileStore{profiles: []models.FamilyProfile{sameZip, otherZip}}
	engine := NewEngine(store)
	requester := austinProfile("u1", "f1", "Requester", nil, nil)

	results, err := engine.FindNearby(context.Background(), "u1", &requester, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].FamilyID)
	assert.Nil(t, results[0].Distance)
}

func TestFindNearbyNilRequester(t *testing.T) {
	store := &fakeProfileStore{profiles: []models.FamilyProfile{
		austinProfile("u2", "f2", "Anyone", ptr(30.26), ptr(-97.75)),
	}}
	engine := NewEngine(store)

	results, err := engine.FindNearby(context.Background(), "u1", nil, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Distance)
}

func TestParseInterests(t *testing.T) {
	assert.Nil(t, ParseInterests(""))
	assert.Equal(t, []string{"hiking", "soccer"}, ParseInterests("hiking, soccer"))
	assert.Equal(t, []string{"art"}, ParseInterests(" art ,, "))
}
