// Package discovery implements the nearby-family search: multi-predicate
// filtering over family profiles followed by great-circle distance ranking.
package discovery

import (
	"context"
	"sort"
	"strings"

	"github.com/villagefriends/network_backend/models"
)

// DefaultRadiusMiles bounds the distance filter when the caller gives none.
const DefaultRadiusMiles = 25

// unrankedSentinel orders candidates without a computable distance after
// every ranked candidate.
const unrankedSentinel = 999

// ProfileStore supplies candidate profiles matching a Query.
type ProfileStore interface {
	Search(ctx context.Context, q Query) ([]models.FamilyProfile, error)
}

// Query is the candidate-set predicate handed to the profile store. The
// store may push parts of it into its own query language; Matches is the
// authoritative definition of the whole predicate.
type Query struct {
	ExcludeUserID string
	ZipCode       string   // exact match
	City          string   // case-insensitive substring, used with State
	State         string   // case-insensitive substring, used with City
	Interests     []string // at least one shared interest; empty = no constraint
	Limit         int
}

// Matches reports whether a profile satisfies every predicate of the query.
func (q Query) Matches(p *models.FamilyProfile) bool {
	if q.ExcludeUserID != "" && p.UserID == q.ExcludeUserID {
		return false
	}
	if q.ZipCode != "" && p.ZipCode != q.ZipCode {
		return false
	}
	if q.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(q.City)) {
		return false
	}
	if q.State != "" && !strings.Contains(strings.ToLower(p.State), strings.ToLower(q.State)) {
		return false
	}
	return p.SharesInterest(q.Interests)
}

// Filters are the caller-supplied search constraints. Every field is
// optional; zero values mean "no constraint".
type Filters struct {
	ZipCode   string
	City      string
	State     string
	Radius    int
	MinAge    *int
	MaxAge    *int
	Interests []string
}

// Result is a candidate profile annotated with the computed distance in
// miles. Distance is nil when the candidate could not be ranked (no
// coordinates on either side).
type Result struct {
	models.FamilyProfile
	Distance *float64 `json:"distance"`
}

// Engine resolves nearby-family searches against a profile store.
type Engine struct {
	profiles ProfileStore
}

// NewEngine constructs an Engine with its profile store.
func NewEngine(profiles ProfileStore) *Engine {
	return &Engine{profiles: profiles}
}

// FindNearby returns candidate families for the requesting user, filtered
// and distance-ranked. The requester profile may be nil (user without a
// profile); the search then runs on the explicit filters alone with no
// distance stage. Missing or out-of-range filter values are treated as
// unconstrained; the search itself never fails on bad input.
//
// Location precedence: an explicit zip code wins, then city+state, then the
// requester's own zip code. The last applies only when the requester has no
// stored coordinates, because with coordinates the cut happens at the
// distance stage instead.
func (e *Engine) FindNearby(ctx context.Context, userID string, requester *models.FamilyProfile, f Filters) ([]Result, error) {
	q := Query{
		ExcludeUserID: userID,
		Interests:     f.Interests,
		Limit:         100,
	}

	switch {
	case f.ZipCode != "":
		q.ZipCode = f.ZipCode
	case f.City != "" && f.State != "":
		q.City = f.City
		q.State = f.State
	case requester != nil && !requester.HasCoordinates():
		q.ZipCode = requester.ZipCode
	}

	candidates, err := e.profiles.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if f.MinAge != nil || f.MaxAge != nil {
		aged := candidates[:0]
		for _, c := range candidates {
			if c.HasKidInAgeRange(f.MinAge, f.MaxAge) {
				aged = append(aged, c)
			}
		}
		candidates = aged
	}

	if requester == nil || !requester.HasCoordinates() {
		results := make([]Result, 0, len(candidates))
		for _, c := range candidates {
			results = append(results, Result{FamilyProfile: c})
		}
		return results, nil
	}

	radius := f.Radius
	if radius <= 0 {
		radius = DefaultRadiusMiles
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if c.HasCoordinates() {
			dist := Haversine(*requester.Latitude, *requester.Longitude, *c.Latitude, *c.Longitude)
			if dist > float64(radius) {
				continue
			}
			rounded := roundMiles(dist)
			results = append(results, Result{FamilyProfile: c, Distance: &rounded})
		} else if c.ZipCode == requester.ZipCode {
			// Same-zip families without coordinates stay in, unranked.
			results = append(results, Result{FamilyProfile: c})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return sortKey(results[i]) < sortKey(results[j])
	})

	return results, nil
}

func sortKey(r Result) float64 {
	if r.Distance == nil {
		return unrankedSentinel
	}
	return *r.Distance
}

// ParseInterests splits a comma-separated interest list, trimming blanks.
func ParseInterests(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
