// internal/workers/matching/notify-companies/handler.go
package notifycompanies

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
	"renovation-matching/internal/dispatch"
	"renovation-matching/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-companies"
)

var schema = validation.MustCompile(inputSchema)

// Dispatcher is implemented by *dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, selected []models.MatchedCompany, project models.Project) (*dispatch.Report, error)
}

type Handler struct {
	config     *Config
	dispatcher Dispatcher
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, dispatcher Dispatcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		dispatcher: dispatcher,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

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
	report, err := h.dispatcher.Dispatch(ctx, input.SelectedCompanies, input.Project)
	if err != nil {
		if errors.Is(err, dispatch.ErrAllNotificationsFailed) {
			return nil, apperrors.NewNotificationDispatchFailedError(err).WithMetadata(map[string]interface{}{
				"projectId": input.Project.ID,
				"selected":  len(input.SelectedCompanies),
			})
		}
		return nil, err
	}

	return &Output{Report: *report, Status: status(report)}, nil
}

func status(r *dispatch.Report) string {
	switch {
	case r.Selected == 0:
		return StatusNone
	case r.PersistFailed == 0 && r.SendFailed == 0:
		return StatusSent
	default:
		return StatusPartial
	}
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
