// internal/matching/filter.go
package matching

import (
	"context"

	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/common/metrics"
	"renovation-matching/internal/models"
)

// DefaultMaxConcurrentProjects is the number of in-progress projects at which
// a company stops receiving new matches.
const DefaultMaxConcurrentProjects = 5

// Reason explains why the filter rejected a candidate.
type Reason string

const (
	ReasonIneligible   Reason = metrics.ReasonIneligible
	ReasonOutOfArea    Reason = metrics.ReasonOutOfArea
	ReasonNoCapability Reason = metrics.ReasonNoCapability
	ReasonNoCapacity   Reason = metrics.ReasonNoCapacity
)

// Decision is the filter outcome for one candidate. DistanceKm is set once the
// eligibility check passed, so the engine does not compute it twice.
type Decision struct {
	Keep       bool
	DistanceKm float64
	Reason     Reason

	// DegradedAvailability is set when the workload lookup failed and the
	// candidate was kept anyway.
	DegradedAvailability bool
}

// Filter applies the hard rules that remove a candidate before scoring.
type Filter struct {
	workload      WorkloadRepository
	maxConcurrent int
	logger        logger.Logger
}

// NewFilter builds a filter. workload may be nil, in which case the
// concurrency rule is skipped.
func NewFilter(workload WorkloadRepository, maxConcurrent int, log logger.Logger) *Filter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentProjects
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Filter{
		workload:      workload,
		maxConcurrent: maxConcurrent,
		logger:        log.WithFields(map[string]interface{}{"component": "candidate-filter"}),
	}
}

// Evaluate runs the rules in order: eligibility, territory, capability,
// capacity. The first failing rule decides the reason.
func (f *Filter) Evaluate(ctx context.Context, c models.Company, criteria models.MatchingCriteria) Decision {
	if !c.Eligible() {
		return reject(ReasonIneligible, 0)
	}

	distance := DistanceKm(
		criteria.Location.Latitude, criteria.Location.Longitude,
		c.Territory.Center.Latitude, c.Territory.Center.Longitude,
	)
	if distance > c.Territory.RadiusKm {
		return reject(ReasonOutOfArea, distance)
	}

	// With nothing required there is nothing to intersect.
	if required := criteria.RequiredCodes(); len(required) > 0 {
		if matched, _ := coverage(required, c.Activities); matched == 0 {
			return reject(ReasonNoCapability, distance)
		}
	}

	if c.Availability != nil && c.Availability.HasBlockedDateWithin(criteria.Timeline.StartDate, criteria.Timeline.EndDate) {
		return reject(ReasonNoCapacity, distance)
	}

	if f.workload == nil {
		return Decision{Keep: true, DistanceKm: distance}
	}

	active, err := f.workload.CountActiveProjects(ctx, c.ID)
	if err != nil {
		return f.failOpen(c, distance, err)
	}
	if active >= f.maxConcurrent {
		return reject(ReasonNoCapacity, distance)
	}
	return Decision{Keep: true, DistanceKm: distance}
}

// failOpen is the degraded-availability branch: the candidate is kept and
// flagged when its workload could not be read.
func (f *Filter) failOpen(c models.Company, distance float64, err error) Decision {
	f.logger.Warn("workload lookup failed, treating company as available", map[string]interface{}{
		"companyId": c.ID,
		"error":     err,
	})
	return Decision{Keep: true, DistanceKm: distance, DegradedAvailability: true}
}

func reject(reason Reason, distance float64) Decision {
	metrics.CandidatesRejected.WithLabelValues(string(reason)).Inc()
	return Decision{Keep: false, DistanceKm: distance, Reason: reason}
}
