// internal/workers/eoi/expire-eois/handler.go
package expireeois

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/common/metrics"
	"bdmatch-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "expire-eois"
)

// Handler runs the periodic expiry sweep. It is driven by a timer process,
// not by user requests, so it carries no identity resolution.
type Handler struct {
	config       *Config
	eois         *store.EoiStore
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, eois *store.EoiStore, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		eois:         eois,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			errors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode(err)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	now := time.Now().UTC()
	if input.AsOf != "" {
		parsed, err := time.Parse(time.RFC3339, input.AsOf)
		if err != nil {
			return nil, errors.NewValidationFailedError(fmt.Sprintf("parse asOf: %v", err))
		}
		now = parsed.UTC()
	}

	expired, err := h.eois.ExpireOpen(ctx, now)
	if err != nil {
		return nil, err
	}

	if expired > 0 {
		metrics.EoiTransitions.WithLabelValues("open", "expired").Add(float64(expired))
	}

	h.logger.Info("expiry sweep finished", map[string]interface{}{
		"expiredCount": expired,
		"sweptAt":      now.Format(time.RFC3339),
	})

	return &Output{
		ExpiredCount: expired,
		SweptAt:      now.Format(time.RFC3339),
	}, nil
}

func errorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
	})
}

// Execute runs the worker's business logic directly. Exposed for tests and
// for callers outside the job loop.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
