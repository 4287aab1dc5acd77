// internal/matching/engine.go
package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/common/metrics"
	"renovation-matching/internal/common/observability"
	"renovation-matching/internal/models"
)

var (
	ErrInvalidCriteria       = errors.New("invalid matching criteria")
	ErrRepositoryUnavailable = errors.New("company repository unavailable")
)

// CompanyRepository lists companies that are active and verified. Zero
// companies is a valid answer, not an error.
type CompanyRepository interface {
	ListEligible(ctx context.Context) ([]models.Company, error)
}

// WorkloadRepository counts the in-progress projects a company is selected on.
type WorkloadRepository interface {
	CountActiveProjects(ctx context.Context, companyID string) (int, error)
}

// Tie bands used when ordering ranked companies.
const (
	scoreTieBand  = 0.05
	ratingTieBand = 0.1
)

type Config struct {
	MaxConcurrentProjects int
}

// Result is the outcome of one Rank call.
type Result struct {
	Companies []models.MatchedCompany `json:"companies"`

	// Considered is the number of records read from the roster.
	Considered int `json:"considered"`
	// Rejected counts dropped candidates by reason.
	Rejected map[string]int `json:"rejected"`
	// Degraded is set when the roster came from the fallback repository.
	Degraded bool `json:"degraded"`
	// DegradedAvailability counts kept candidates whose workload lookup
	// failed open.
	DegradedAvailability int `json:"degradedAvailability"`
}

// Engine ranks companies against project criteria. It holds no per-call
// state and is safe for concurrent use.
type Engine struct {
	companies CompanyRepository
	fallback  CompanyRepository
	filter    *Filter
	logger    logger.Logger
	obs       *observability.Observability
}

type Option func(*Engine)

// WithFallback sets the roster scored when the company repository fails.
func WithFallback(repo CompanyRepository) Option {
	return func(e *Engine) { e.fallback = repo }
}

func WithObservability(obs *observability.Observability) Option {
	return func(e *Engine) { e.obs = obs }
}

func NewEngine(cfg Config, companies CompanyRepository, workload WorkloadRepository, log logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	e := &Engine{
		companies: companies,
		filter:    NewFilter(workload, cfg.MaxConcurrentProjects, log),
		logger:    log.WithFields(map[string]interface{}{"component": "matching-engine"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank loads the eligible roster and ranks it against criteria. When the
// repository fails and a fallback is configured, the fallback roster is
// ranked instead and the result is marked Degraded.
func (e *Engine) Rank(ctx context.Context, project models.Project, criteria models.MatchingCriteria) (*Result, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	start := time.Now()
	log := e.logger.WithFields(map[string]interface{}{"projectId": project.ID})

	companies, degraded, err := e.loadRoster(ctx, log)
	if err != nil {
		return nil, err
	}

	res := e.rank(ctx, companies, criteria)
	res.Degraded = degraded

	mode := metrics.ModeLive
	if degraded {
		mode = metrics.ModeDegraded
	}
	metrics.MatchingRuns.WithLabelValues(mode).Inc()
	e.obs.RecordRanking(ctx, mode, time.Since(start), len(res.Companies))

	log.Info("ranking completed", map[string]interface{}{
		"considered":           res.Considered,
		"ranked":               len(res.Companies),
		"rejected":             res.Rejected,
		"degraded":             degraded,
		"degradedAvailability": res.DegradedAvailability,
	})
	return res, nil
}

func (e *Engine) loadRoster(ctx context.Context, log logger.Logger) ([]models.Company, bool, error) {
	companies, err := e.companies.ListEligible(ctx)
	if err == nil {
		return companies, false, nil
	}
	if e.fallback == nil {
		return nil, false, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	log.Warn("company repository unavailable, ranking fallback roster", map[string]interface{}{
		"error": err,
	})
	companies, fbErr := e.fallback.ListEligible(ctx)
	if fbErr != nil {
		return nil, false, fmt.Errorf("%w: %v (fallback: %v)", ErrRepositoryUnavailable, err, fbErr)
	}
	return companies, true, nil
}

// RankCandidates filters, scores and orders companies. Records that fail
// validation are logged and skipped.
func (e *Engine) RankCandidates(ctx context.Context, companies []models.Company, criteria models.MatchingCriteria) []models.MatchedCompany {
	return e.rank(ctx, companies, criteria).Companies
}

func (e *Engine) rank(ctx context.Context, companies []models.Company, criteria models.MatchingCriteria) *Result {
	res := &Result{
		Companies:  []models.MatchedCompany{},
		Considered: len(companies),
		Rejected:   map[string]int{},
	}
	required := criteria.RequiredCodes()

	for _, c := range companies {
		if err := c.Validate(); err != nil {
			e.logger.Warn("skipping malformed company", map[string]interface{}{
				"companyId": c.ID,
				"error":     err,
			})
			metrics.CandidatesRejected.WithLabelValues(metrics.ReasonMalformed).Inc()
			res.Rejected[metrics.ReasonMalformed]++
			continue
		}

		d := e.filter.Evaluate(ctx, c, criteria)
		if !d.Keep {
			res.Rejected[string(d.Reason)]++
			continue
		}

		m := score(c, criteria, required, d.DistanceKm)
		if m.MatchingScore < MinimumScore {
			metrics.CandidatesRejected.WithLabelValues(metrics.ReasonLowScore).Inc()
			res.Rejected[metrics.ReasonLowScore]++
			continue
		}
		if d.DegradedAvailability {
			res.DegradedAvailability++
		}
		res.Companies = append(res.Companies, m)
	}

	SortMatches(res.Companies)
	return res
}

func score(c models.Company, criteria models.MatchingCriteria, required []string, distance float64) models.MatchedCompany {
	matched, missing := coverage(required, c.Activities)

	activity := ActivityScore(required, c.Activities)
	location := LocationScore(distance, c.Territory.RadiusKm)
	availability := AvailabilityScore(c.Availability, criteria.Timeline)
	reliability := ReliabilityScore(c.Reputation)

	return models.MatchedCompany{
		Company:                c.Clone(),
		MatchingScore:          CompositeScore(activity, location, reliability, availability),
		ActivityScore:          activity,
		LocationScore:          location,
		AvailabilityScore:      availability,
		ReliabilityScore:       reliability,
		DistanceKm:             distance,
		CanHandleAllActivities: matched == len(required),
		MissingActivities:      missing,
		EstimatedResponseHours: EstimatedResponseHours(c.Reputation.ResponseRate),
	}
}

// SortMatches orders matches in place: full coverage first, then composite
// score, average rating and success rate, all descending. Scores within 0.05
// and ratings within 0.1 of each other count as equal. The sort is stable so
// equal entries keep their roster order.
func SortMatches(matches []models.MatchedCompany) {
	sort.SliceStable(matches, func(i, j int) bool {
		return ranksBefore(matches[i], matches[j])
	})
}

func ranksBefore(a, b models.MatchedCompany) bool {
	if a.CanHandleAllActivities != b.CanHandleAllActivities {
		return a.CanHandleAllActivities
	}
	if math.Abs(a.MatchingScore-b.MatchingScore) >= scoreTieBand {
		return a.MatchingScore > b.MatchingScore
	}
	ra, rb := a.Reputation.AverageRating, b.Reputation.AverageRating
	if math.Abs(ra-rb) >= ratingTieBand {
		return ra > rb
	}
	return a.Reputation.SuccessRate > b.Reputation.SuccessRate
}
