// internal/matching/scorers_test.go
package matching

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"renovation-matching/internal/models"
)

func TestDistanceKm(t *testing.T) {
	paris := [2]float64{48.8566, 2.3522}
	lyon := [2]float64{45.7640, 4.8357}

	d := DistanceKm(paris[0], paris[1], lyon[0], lyon[1])
	assert.InDelta(t, 391.5, d, 2)
	assert.InDelta(t, d, DistanceKm(lyon[0], lyon[1], paris[0], paris[1]), 1e-9)
	assert.Equal(t, 0.0, DistanceKm(paris[0], paris[1], paris[0], paris[1]))

	antipode := DistanceKm(0, 0, 0, 180)
	assert.InDelta(t, math.Pi*earthRadiusKm, antipode, 1e-6)
}

func TestActivityScore(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		offered  []string
		want     float64
	}{
		{"nothing required", nil, nil, 1},
		{"nothing required with offer", nil, []string{"5.4"}, 1},
		{"full coverage clamps", []string{"5.4"}, []string{"5.1", "5.4"}, 1},
		{"half coverage", []string{"5.4", "2.2"}, []string{"5.4"}, 0.5},
		{"quarter coverage", []string{"5.4", "2.2", "3.1", "A.1"}, []string{"A.1"}, 0.25},
		{"no overlap", []string{"2.2"}, []string{"5.4"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ActivityScore(tt.required, tt.offered), 1e-9)
		})
	}
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		radius   float64
		want     float64
	}{
		{"center gets bonus clamped", 0, 50, 1},
		{"close gets bonus", 5, 50, 1},
		{"12 km of 50", 12, 50, 0.76},
		{"edge of territory", 50, 50, 0},
		{"outside", 80, 50, 0},
		{"zero radius at center", 0, 0, 1},
		{"zero radius away", 0.5, 0, 0},
		{"negative radius", 0, -3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LocationScore(tt.distance, tt.radius), 1e-9)
		})
	}
}

func TestLocationScore_ZeroBeyondRadius(t *testing.T) {
	for _, radius := range []float64{1, 10, 50, 120} {
		for _, extra := range []float64{0.001, 1, 10, 1000} {
			assert.Equal(t, 0.0, LocationScore(radius+extra, radius))
		}
	}
}

func TestAvailabilityScore(t *testing.T) {
	week := map[string]models.DayHours{
		"monday": {Available: true}, "tuesday": {Available: true}, "wednesday": {Available: true},
		"thursday": {Available: true}, "friday": {Available: true}, "saturday": {Available: true},
	}
	timeline := models.Timeline{
		StartDate: models.NewDate(2024, time.June, 1),
		EndDate:   models.NewDate(2024, time.June, 30),
	}

	assert.InDelta(t, 0.5, AvailabilityScore(nil, timeline), 1e-9)

	full := &models.Availability{WorkingHours: week}
	assert.InDelta(t, 0.4+0.4+0.16, AvailabilityScore(full, timeline), 1e-9)

	blocked := &models.Availability{
		WorkingHours: week,
		BlockedDates: []models.Date{models.NewDate(2024, time.June, 15)},
	}
	assert.InDelta(t, 0.4+0.2+0.16, AvailabilityScore(blocked, timeline), 1e-9)

	// Without a timeline blocked dates do not count.
	assert.InDelta(t, 0.96, AvailabilityScore(blocked, models.Timeline{}), 1e-9)

	partTime := &models.Availability{WorkingHours: map[string]models.DayHours{
		"monday": {Available: true}, "tuesday": {Available: true},
	}}
	assert.InDelta(t, 0.4*2.0/5+0.4+0.16, AvailabilityScore(partTime, timeline), 1e-9)

	empty := &models.Availability{}
	assert.InDelta(t, 0.56, AvailabilityScore(empty, timeline), 1e-9)
}

func TestReliabilityScore(t *testing.T) {
	assert.InDelta(t, 0.961, ReliabilityScore(models.Reputation{AverageRating: 4.8, SuccessRate: 95, ResponseRate: 98}), 1e-9)
	assert.InDelta(t, 1, ReliabilityScore(models.Reputation{AverageRating: 9, SuccessRate: 300, ResponseRate: 101}), 1e-9)
	assert.InDelta(t, 0, ReliabilityScore(models.Reputation{AverageRating: -1, SuccessRate: -5, ResponseRate: math.NaN()}), 1e-9)
}

func TestCompositeScore_Bounds(t *testing.T) {
	values := []float64{-1, 0, 0.3, 1, 2, math.NaN()}
	for _, a := range values {
		for _, l := range values {
			for _, r := range values {
				for _, av := range values {
					s := CompositeScore(a, l, r, av)
					assert.True(t, s >= 0 && s <= 1, "composite %v out of range for %v %v %v %v", s, a, l, r, av)
				}
			}
		}
	}
	assert.InDelta(t, 1, CompositeScore(1, 1, 1, 1), 1e-9)
}

func TestEstimatedResponseHours(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{100, 2}, {90.5, 2}, {90, 6}, {71, 6}, {70, 24}, {50.1, 24}, {50, 48}, {0, 48},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimatedResponseHours(tt.rate), "rate %v", tt.rate)
	}
}
