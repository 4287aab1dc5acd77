// internal/workers/matching/rank-companies/handler.go
package rankcompanies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"renovation-matching/internal/common/camunda"
	apperrors "renovation-matching/internal/common/errors"
	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/common/metrics"
	"renovation-matching/internal/common/validation"
	"renovation-matching/internal/matching"
	"renovation-matching/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-companies"
)

var schema = validation.MustCompile(inputSchema)

// Ranker is implemented by *matching.Engine.
type Ranker interface {
	Rank(ctx context.Context, project models.Project, criteria models.MatchingCriteria) (*matching.Result, error)
}

type Handler struct {
	config     *Config
	engine     Ranker
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, engine Ranker, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func parseInput(variables string) (*Input, error) {
	result, err := schema.ValidateJSON(variables)
	if err != nil {
		return nil, apperrors.NewInputValidationError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInputValidationError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInputValidationError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	criteria := input.Project.Criteria()
	if input.Criteria != nil {
		criteria = *input.Criteria
	}

	res, err := h.engine.Rank(ctx, input.Project, criteria)
	switch {
	case errors.Is(err, matching.ErrInvalidCriteria):
		return nil, apperrors.NewInvalidCriteriaError(err)
	case errors.Is(err, matching.ErrRepositoryUnavailable):
		return nil, apperrors.NewCompanyRepositoryUnavailableError(err)
	case err != nil:
		return nil, apperrors.NewMatchingFailedError(err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	companies := res.Companies
	if len(companies) > limit {
		companies = companies[:limit]
	}

	h.logger.Info("companies ranked", map[string]interface{}{
		"projectId":  input.Project.ID,
		"considered": res.Considered,
		"matched":    len(res.Companies),
		"returned":   len(companies),
		"degraded":   res.Degraded,
	})

	return &Output{
		MatchedCompanies:     companies,
		TotalMatched:         len(res.Companies),
		Considered:           res.Considered,
		Rejected:             res.Rejected,
		Degraded:             res.Degraded,
		DegradedAvailability: res.DegradedAvailability,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	err = h.sendCompletion(func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error":  err,
			"jobKey": job.Key,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// sendCompletion resends the complete-job command while the gateway reports
// transient failures.
func (h *Handler) sendCompletion(send func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	return camunda.ExecuteWithRetry(ctx, h.config.CompleteRetry, "complete job", send)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
