// internal/workers/eoi/search-open-eois/handler.go
package searchopeneois

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bdmatch-workers/internal/common/database"
	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/common/metrics"
	"bdmatch-workers/internal/workers/eoi/search-open-eois/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-open-eois"
)

type Handler struct {
	config       *Config
	es           *database.ElasticsearchClient
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, es *database.ElasticsearchClient, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		es:           es,
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
	if h.es == nil {
		return nil, errors.NewSearchQueryFailedError("open_eois",
			fmt.Errorf("search cluster is not configured"))
	}

	eq := queries.OpenEoisQuery{
		Index:            queries.EoiIndex,
		Keywords:         input.Keywords,
		EoiType:          input.EoiType,
		InitiatorType:    input.InitiatorType,
		TargetRegions:    input.TargetRegions,
		TargetIndustries: input.TargetIndustries,
		Now:              time.Now().UTC(),
	}
	eq.Pagination.From = input.Pagination.From
	eq.Pagination.Size = h.pageSize(input.Pagination.Size)

	result, err := queries.Execute(ctx, h.es.Client, eq)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError("open_eois", err)
	}

	h.logger.Info("open eoi search finished", map[string]interface{}{
		"total":    result.Total,
		"returned": len(result.Items),
		"from":     eq.Pagination.From,
	})

	items := result.Items
	if items == nil {
		items = []map[string]interface{}{}
	}

	return &Output{
		Total:   result.Total,
		Results: items,
		From:    eq.Pagination.From,
		Size:    eq.Pagination.Size,
	}, nil
}

func (h *Handler) pageSize(requested int) int {
	if requested <= 0 {
		return h.config.DefaultPageSize
	}
	if requested > h.config.MaxPageSize {
		return h.config.MaxPageSize
	}
	return requested
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
