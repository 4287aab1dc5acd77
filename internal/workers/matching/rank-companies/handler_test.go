// internal/workers/matching/rank-companies/handler_test.go
package rankcompanies

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"renovation-matching/internal/common/camunda"
	"renovation-matching/internal/common/config"
	apperrors "renovation-matching/internal/common/errors"
	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/matching"
	"renovation-matching/internal/models"
	"renovation-matching/internal/repository"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return NewConfig(config.WorkerConfig{Timeout: 5000}, config.MatchingConfig{DefaultLimit: 50})
}

type failingRepo struct{}

func (failingRepo) ListEligible(context.Context) ([]models.Company, error) {
	return nil, stderrors.New("dial tcp 10.0.0.5:5432: connection refused")
}

type MockRanker struct {
	RankFunc func(ctx context.Context, project models.Project, criteria models.MatchingCriteria) (*matching.Result, error)
	criteria models.MatchingCriteria
}

func (m *MockRanker) Rank(ctx context.Context, project models.Project, criteria models.MatchingCriteria) (*matching.Result, error) {
	m.criteria = criteria
	return m.RankFunc(ctx, project, criteria)
}

func newDemoHandler(t *testing.T, opts ...matching.Option) *Handler {
	log := logger.NewTestLogger(t)
	engine := matching.NewEngine(matching.Config{}, repository.NewStaticCompanyRepository(repository.DemoCompanies()), nil, log, opts...)
	return NewHandler(createTestConfig(), engine, log)
}

func createTestProject() models.Project {
	return models.Project{
		ID:         "project-42",
		Title:      "Mise aux normes électriques",
		Activities: []string{"5.4"},
		Location:   models.GeoLocation{Latitude: 48.8566, Longitude: 2.3522, City: "Paris"},
		Timeline: models.Timeline{
			StartDate: models.NewDate(2024, time.September, 2),
			EndDate:   models.NewDate(2024, time.September, 20),
		},
	}
}

func assertStandardError(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.StandardError {
	t.Helper()
	require.Error(t, err)
	var stdErr *apperrors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %T", err)
	assert.Equal(t, code, stdErr.Code)
	return stdErr
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
		validate  func(t *testing.T, in *Input)
	}{
		{
			name: "valid input",
			variables: `{
				"project": {
					"id": "p-1",
					"activities": ["5.4", "5.1"],
					"location": {"lat": 48.85, "lng": 2.35, "city": "Paris"},
					"timeline": {"startDate": "2024-06-03", "endDate": "2024-06-28"}
				},
				"limit": 10
			}`,
			validate: func(t *testing.T, in *Input) {
				assert.Equal(t, "p-1", in.Project.ID)
				assert.Equal(t, []string{"5.4", "5.1"}, in.Project.Activities)
				assert.Equal(t, 10, in.Limit)
				assert.Equal(t, models.NewDate(2024, time.June, 3), in.Project.Timeline.StartDate)
				assert.Nil(t, in.Criteria)
			},
		},
		{
			name: "explicit criteria",
			variables: `{
				"project": {"id": "p-1", "location": {"lat": 48.85, "lng": 2.35}},
				"criteria": {"activities": ["A.1"], "location": {"lat": 45.76, "lng": 4.83}}
			}`,
			validate: func(t *testing.T, in *Input) {
				require.NotNil(t, in.Criteria)
				assert.Equal(t, []string{"A.1"}, in.Criteria.Activities)
			},
		},
		{
			name:      "missing project",
			variables: `{"limit": 5}`,
			wantErr:   true,
		},
		{
			name:      "empty project id",
			variables: `{"project": {"id": "", "location": {"lat": 1, "lng": 1}}}`,
			wantErr:   true,
		},
		{
			name:      "latitude out of range",
			variables: `{"project": {"id": "p-1", "location": {"lat": 123, "lng": 2}}}`,
			wantErr:   true,
		},
		{
			name:      "limit above maximum",
			variables: `{"project": {"id": "p-1", "location": {"lat": 48, "lng": 2}}, "limit": 1000}`,
			wantErr:   true,
		},
		{
			name:      "not json",
			variables: `{"project":`,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseInput(tt.variables)
			if tt.wantErr {
				stdErr := assertStandardError(t, err, apperrors.ErrCodeInputValidationFailed)
				assert.False(t, stdErr.Retryable)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, in)
			}
		})
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_DemoRoster(t *testing.T) {
	h := newDemoHandler(t)

	out, err := h.Execute(context.Background(), &Input{Project: createTestProject()})
	require.NoError(t, err)

	require.Len(t, out.MatchedCompanies, 2)
	assert.Equal(t, "demo-renov-paris", out.MatchedCompanies[0].ID)
	assert.Equal(t, "demo-elec-boulogne", out.MatchedCompanies[1].ID)
	assert.Equal(t, 2, out.TotalMatched)
	assert.Equal(t, 5, out.Considered)
	assert.Equal(t, 2, out.Rejected["no_capability"])
	assert.Equal(t, 1, out.Rejected["out_of_area"])
	assert.False(t, out.Degraded)

	for _, m := range out.MatchedCompanies {
		assert.True(t, m.CanHandleAllActivities)
		assert.GreaterOrEqual(t, m.MatchingScore, matching.MinimumScore)
		assert.LessOrEqual(t, m.MatchingScore, 1.0)
	}
}

func TestHandler_Execute_Limit(t *testing.T) {
	h := newDemoHandler(t)

	out, err := h.Execute(context.Background(), &Input{Project: createTestProject(), Limit: 1})
	require.NoError(t, err)
	require.Len(t, out.MatchedCompanies, 1)
	assert.Equal(t, "demo-renov-paris", out.MatchedCompanies[0].ID)
	assert.Equal(t, 2, out.TotalMatched)
}

func TestHandler_Execute_DefaultLimit(t *testing.T) {
	companies := make([]models.MatchedCompany, 60)
	for i := range companies {
		companies[i].ID = fmt.Sprintf("c-%02d", i)
	}
	ranker := &MockRanker{RankFunc: func(context.Context, models.Project, models.MatchingCriteria) (*matching.Result, error) {
		return &matching.Result{Companies: companies, Considered: 80, Rejected: map[string]int{"out_of_area": 20}}, nil
	}}
	h := NewHandler(createTestConfig(), ranker, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Project: createTestProject()})
	require.NoError(t, err)
	assert.Len(t, out.MatchedCompanies, 50)
	assert.Equal(t, 60, out.TotalMatched)
	assert.Equal(t, 80, out.Considered)
}

func TestHandler_Execute_CriteriaOverride(t *testing.T) {
	ranker := &MockRanker{RankFunc: func(context.Context, models.Project, models.MatchingCriteria) (*matching.Result, error) {
		return &matching.Result{Companies: []models.MatchedCompany{}, Rejected: map[string]int{}}, nil
	}}
	h := NewHandler(createTestConfig(), ranker, logger.NewTestLogger(t))

	project := createTestProject()
	_, err := h.Execute(context.Background(), &Input{Project: project})
	require.NoError(t, err)
	assert.Equal(t, []string{"5.4"}, ranker.criteria.Activities)
	assert.Equal(t, project.Location, ranker.criteria.Location)

	override := models.MatchingCriteria{IntellectualServices: []string{"A.1"}}
	_, err = h.Execute(context.Background(), &Input{Project: project, Criteria: &override})
	require.NoError(t, err)
	assert.Empty(t, ranker.criteria.Activities)
	assert.Equal(t, []string{"A.1"}, ranker.criteria.IntellectualServices)
}

func TestHandler_Execute_FallbackRoster(t *testing.T) {
	log := logger.NewTestLogger(t)
	engine := matching.NewEngine(matching.Config{}, failingRepo{}, nil, log,
		matching.WithFallback(repository.NewStaticCompanyRepository(repository.DemoCompanies())))
	h := NewHandler(createTestConfig(), engine, log)

	out, err := h.Execute(context.Background(), &Input{Project: createTestProject()})
	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.NotEmpty(t, out.MatchedCompanies)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		engine    func(log logger.Logger) Ranker
		project   func() models.Project
		wantCode  apperrors.ErrorCode
		retryable bool
	}{
		{
			name: "repository unavailable without fallback",
			engine: func(log logger.Logger) Ranker {
				return matching.NewEngine(matching.Config{}, failingRepo{}, nil, log)
			},
			project:   createTestProject,
			wantCode:  apperrors.ErrCodeCompanyRepositoryUnavailable,
			retryable: true,
		},
		{
			name: "timeline ends before it starts",
			engine: func(log logger.Logger) Ranker {
				return matching.NewEngine(matching.Config{}, repository.NewStaticCompanyRepository(nil), nil, log)
			},
			project: func() models.Project {
				p := createTestProject()
				p.Timeline.EndDate = models.NewDate(2024, time.August, 1)
				return p
			},
			wantCode: apperrors.ErrCodeInvalidCriteria,
		},
		{
			name: "unexpected engine failure",
			engine: func(logger.Logger) Ranker {
				return &MockRanker{RankFunc: func(context.Context, models.Project, models.MatchingCriteria) (*matching.Result, error) {
					return nil, stderrors.New("boom")
				}}
			},
			project:  createTestProject,
			wantCode: apperrors.ErrCodeMatchingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewTestLogger(t)
			h := NewHandler(createTestConfig(), tt.engine(log), log)

			out, err := h.Execute(context.Background(), &Input{Project: tt.project()})
			assert.Nil(t, out)
			stdErr := assertStandardError(t, err, tt.wantCode)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig(config.WorkerConfig{}, config.MatchingConfig{})
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 50, cfg.DefaultLimit)
	require.NotNil(t, cfg.CompleteRetry)
	assert.Equal(t, camunda.DefaultRetryConfig.MaxRetries, cfg.CompleteRetry.MaxRetries)
	assert.Equal(t, 4, NewConfig(config.WorkerConfig{MaxRetries: 4}, config.MatchingConfig{}).CompleteRetry.MaxRetries)
}

func TestHandler_SendCompletion_RetriesUnavailableGateway(t *testing.T) {
	h := newDemoHandler(t)
	h.config.CompleteRetry = &camunda.RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := h.sendCompletion(func(context.Context) error {
		calls++
		if calls < 3 {
			return status.Error(codes.Unavailable, "connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestHandler_SendCompletion_GivesUp(t *testing.T) {
	h := newDemoHandler(t)
	h.config.CompleteRetry = &camunda.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := h.sendCompletion(func(context.Context) error {
		calls++
		return status.Error(codes.Unavailable, "connection refused")
	})

	assertStandardError(t, err, apperrors.ErrCodeExternalService)
	assert.Equal(t, 2, calls)
}
