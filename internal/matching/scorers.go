// internal/matching/scorers.go
package matching

import (
	"math"

	"renovation-matching/internal/models"
)

// Composite weights and threshold. These are product-tuned values.
const (
	WeightActivity     = 0.35
	WeightLocation     = 0.25
	WeightReliability  = 0.25
	WeightAvailability = 0.15

	MinimumScore = 0.30
)

const (
	fullCoverageBonus = 0.2
	proximityBonus    = 0.1
	proximityBonusKm  = 10.0

	fullWorkingWeek     = 5
	blockedDatePenalty  = 0.5
	neutralAvailability = 0.5

	// workloadPlaceholder stands in for the workload term of the availability
	// score. Real workload only gates candidates in the filter.
	workloadPlaceholder = 0.8
)

// coverage compares the required codes with what a company offers.
func coverage(required, offered []string) (matched int, missing []string) {
	has := make(map[string]struct{}, len(offered))
	for _, code := range offered {
		has[code] = struct{}{}
	}
	missing = []string{}
	for _, code := range required {
		if _, ok := has[code]; ok {
			matched++
			continue
		}
		missing = append(missing, code)
	}
	return matched, missing
}

// ActivityScore is the share of required codes the company offers, with a
// bonus for full coverage. No requirements scores 1.
func ActivityScore(required, offered []string) float64 {
	if len(required) == 0 {
		return 1
	}
	matched, _ := coverage(required, offered)
	score := float64(matched) / float64(len(required))
	if matched == len(required) {
		score += fullCoverageBonus
	}
	return clamp01(score)
}

// LocationScore decreases linearly with distance inside the territory radius,
// with a bonus for projects closer than 10 km. A non-positive radius only
// accepts a project at the territory center.
func LocationScore(distanceKm, maxRadiusKm float64) float64 {
	if maxRadiusKm <= 0 {
		if distanceKm == 0 {
			return 1
		}
		return 0
	}
	if distanceKm > maxRadiusKm {
		return 0
	}
	score := 1 - distanceKm/maxRadiusKm
	if distanceKm < proximityBonusKm {
		score += proximityBonus
	}
	return clamp01(score)
}

// AvailabilityScore combines working days per week, blocked dates inside the
// project timeline and the workload placeholder. Companies without
// availability data get a neutral 0.5.
func AvailabilityScore(a *models.Availability, t models.Timeline) float64 {
	if a == nil {
		return neutralAvailability
	}
	days := math.Min(float64(a.WorkingDaysPerWeek())/fullWorkingWeek, 1)

	conflict := 1.0
	if a.HasBlockedDateWithin(t.StartDate, t.EndDate) {
		conflict = blockedDatePenalty
	}

	return clamp01(0.4*days + 0.4*conflict + 0.2*workloadPlaceholder)
}

// ReliabilityScore weights rating, success rate and response rate after
// clamping each to its range.
func ReliabilityScore(r models.Reputation) float64 {
	rating := clamp(r.AverageRating, 0, 5)
	success := clamp(r.SuccessRate, 0, 100)
	response := clamp(r.ResponseRate, 0, 100)
	return clamp01(0.5*rating/5 + 0.3*success/100 + 0.2*response/100)
}

func CompositeScore(activity, location, reliability, availability float64) float64 {
	return clamp01(WeightActivity*activity +
		WeightLocation*location +
		WeightReliability*reliability +
		WeightAvailability*availability)
}

// EstimatedResponseHours buckets a response rate (0-100).
func EstimatedResponseHours(responseRate float64) int {
	switch {
	case responseRate > 90:
		return 2
	case responseRate > 70:
		return 6
	case responseRate > 50:
		return 24
	default:
		return 48
	}
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// clamp also maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
