// internal/workers/matching/notify-companies/handler_test.go
package notifycompanies

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"renovation-matching/internal/common/camunda"
	"renovation-matching/internal/common/config"
	apperrors "renovation-matching/internal/common/errors"
	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/dispatch"
	"renovation-matching/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type MockStore struct {
	CreateFunc func(ctx context.Context, n models.Notification) error
}

func (m *MockStore) Create(ctx context.Context, n models.Notification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	return nil
}

type MockNotifier struct {
	NotifyFunc func(ctx context.Context, req models.NotifyRequest) error
}

func (m *MockNotifier) Notify(ctx context.Context, req models.NotifyRequest) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, req)
	}
	return nil
}

func createTestHandler(t *testing.T, store dispatch.NotificationStore, notifier dispatch.Notifier) *Handler {
	log := logger.NewTestLogger(t)
	d := dispatch.NewDispatcher(dispatch.Config{}, store, notifier, nil, log)
	return NewHandler(NewConfig(config.WorkerConfig{Timeout: 5000}), d, log)
}

func createTestInput(n int) *Input {
	selected := make([]models.MatchedCompany, n)
	for i := range selected {
		selected[i] = models.MatchedCompany{
			Company:       models.Company{ID: fmt.Sprintf("c-%02d", i+1), Email: fmt.Sprintf("c%d@example.fr", i+1)},
			MatchingScore: 0.8,
		}
	}
	return &Input{
		Project:           models.Project{ID: "p-1", Title: "Rénovation cuisine"},
		SelectedCompanies: selected,
	}
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{
			name: "valid input",
			variables: `{"project": {"id": "p-1", "title": "Salle de bain"},
				"selectedCompanies": [{"id": "c-1", "matchingScore": 0.82, "email": "a@b.fr", "missingActivities": ["5.1"]}]}`,
		},
		{
			name:      "empty selection is valid",
			variables: `{"project": {"id": "p-1"}, "selectedCompanies": []}`,
		},
		{
			name:      "missing selection",
			variables: `{"project": {"id": "p-1"}}`,
			wantErr:   true,
		},
		{
			name:      "score above one",
			variables: `{"project": {"id": "p-1"}, "selectedCompanies": [{"id": "c-1", "matchingScore": 82}]}`,
			wantErr:   true,
		},
		{
			name:      "company without id",
			variables: `{"project": {"id": "p-1"}, "selectedCompanies": [{"matchingScore": 0.5}]}`,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				var stdErr *apperrors.StandardError
				require.True(t, stderrors.As(err, &stdErr))
				assert.Equal(t, apperrors.ErrCodeInputValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "p-1", in.Project.ID)
		})
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name       string
		input      *Input
		notifyErr  func(req models.NotifyRequest) error
		wantStatus string
		validate   func(t *testing.T, out *Output)
	}{
		{
			name:       "all delivered",
			input:      createTestInput(3),
			wantStatus: StatusSent,
			validate: func(t *testing.T, out *Output) {
				assert.Equal(t, 3, out.Persisted)
				assert.Equal(t, 3, out.Sent)
				assert.Len(t, out.NotificationIDs, 3)
			},
		},
		{
			name:  "three of ten sends fail",
			input: createTestInput(10),
			notifyErr: func(req models.NotifyRequest) error {
				switch req.CompanyID {
				case "c-03", "c-06", "c-09":
					return stderrors.New("bounced")
				}
				return nil
			},
			wantStatus: StatusPartial,
			validate: func(t *testing.T, out *Output) {
				assert.Equal(t, 10, out.Persisted)
				assert.Equal(t, 7, out.Sent)
				assert.Equal(t, 3, out.SendFailed)
			},
		},
		{
			name:       "nothing selected",
			input:      createTestInput(0),
			wantStatus: StatusNone,
			validate: func(t *testing.T, out *Output) {
				assert.Zero(t, out.Persisted)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &MockNotifier{}
			if tt.notifyErr != nil {
				notifier.NotifyFunc = func(_ context.Context, req models.NotifyRequest) error { return tt.notifyErr(req) }
			}
			h := createTestHandler(t, &MockStore{}, notifier)

			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			if tt.validate != nil {
				tt.validate(t, out)
			}
		})
	}
}

func TestHandler_Execute_AllFailed(t *testing.T) {
	store := &MockStore{CreateFunc: func(context.Context, models.Notification) error {
		return stderrors.New("connection refused")
	}}
	notifier := &MockNotifier{NotifyFunc: func(context.Context, models.NotifyRequest) error {
		return stderrors.New("timeout")
	}}
	h := createTestHandler(t, store, notifier)

	out, err := h.Execute(context.Background(), createTestInput(2))
	assert.Nil(t, out)
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeNotificationDispatchFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "p-1", stdErr.Metadata["projectId"])
	assert.True(t, stderrors.Is(err, dispatch.ErrAllNotificationsFailed))
}

func TestOutput_JSONShape(t *testing.T) {
	out := Output{Report: dispatch.Report{Selected: 2, Persisted: 2, Sent: 1, SendFailed: 1, NotificationIDs: []string{"a", "b"}}, Status: StatusPartial}
	data, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "partial", decoded["status"])
	assert.EqualValues(t, 2, decoded["persisted"])
	assert.EqualValues(t, 1, decoded["sendFailed"])
	assert.Len(t, decoded["notificationIds"], 2)
}

// ==========================
// Job Completion Tests
// ==========================

func TestHandler_SendCompletion_RetriesUnavailableGateway(t *testing.T) {
	h := createTestHandler(t, &MockStore{}, &MockNotifier{})
	h.config.CompleteRetry = &camunda.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := h.sendCompletion(func(context.Context) error {
		calls++
		if calls == 1 {
			return grpcstatus.Error(codes.Unavailable, "gateway restarting")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestHandler_SendCompletion_DoesNotRetryUnknownJob(t *testing.T) {
	h := createTestHandler(t, &MockStore{}, &MockNotifier{})
	h.config.CompleteRetry = &camunda.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := h.sendCompletion(func(context.Context) error {
		calls++
		return grpcstatus.Error(codes.NotFound, "job not found")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	var stdErr *apperrors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeResourceNotFound, stdErr.Code)
}

func TestNewConfig_CompleteRetryFollowsMaxRetries(t *testing.T) {
	assert.Equal(t, 5, NewConfig(config.WorkerConfig{MaxRetries: 5}).CompleteRetry.MaxRetries)
	assert.Equal(t, camunda.DefaultRetryConfig.MaxRetries, NewConfig(config.WorkerConfig{}).CompleteRetry.MaxRetries)
}
