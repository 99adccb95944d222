// internal/workers/eoi/update-eoi/handler.go
package updateeoi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/common/metrics"
	"bdmatch-workers/internal/models"
	"bdmatch-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "update-eoi"
)

type Handler struct {
	config       *Config
	identity     *store.IdentityResolver
	eois         *store.EoiStore
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(
	config *Config,
	identity *store.IdentityResolver,
	eois *store.EoiStore,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		identity:     identity,
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
	if err := validateInput(input); err != nil {
		return nil, err
	}

	caller, err := h.identity.Resolve(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}

	eoi, err := h.eois.GetByID(ctx, input.EoiID)
	if err != nil {
		return nil, err
	}

	if input.MarkUnderReview {
		return h.markUnderReview(ctx, caller, eoi)
	}
	return h.patchDraft(ctx, caller, eoi, input)
}

// markUnderReview moves a sent EOI into under_review. Only the counterparty
// may do this; it signals that the response is being worked on.
func (h *Handler) markUnderReview(ctx context.Context, caller *models.Identity, eoi *models.Eoi) (*Output, error) {
	counterparty := eoi.InitiatorType.Counterparty()
	if !caller.HasSide(counterparty) {
		return nil, errors.NewForbiddenError("only the counterparty may mark an EOI under review")
	}
	if eoi.Status != models.EoiStatusSent {
		return nil, errors.NewInvalidStateError("mark_under_review", string(eoi.Status))
	}

	now := time.Now().UTC()
	rows, err := h.eois.TransitionStatus(ctx, eoi.ID,
		[]models.EoiStatus{models.EoiStatusSent}, models.EoiStatusUnderReview, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errors.NewInvalidStateError("mark_under_review", "not sent")
	}

	metrics.EoiTransitions.WithLabelValues("sent", "under_review").Inc()

	h.logger.Info("eoi marked under review", map[string]interface{}{
		"eoiId": eoi.ID,
	})

	return &Output{
		EoiID:     eoi.ID,
		Status:    string(models.EoiStatusUnderReview),
		UpdatedAt: now.Format(time.RFC3339),
	}, nil
}

func (h *Handler) patchDraft(ctx context.Context, caller *models.Identity, eoi *models.Eoi, input *Input) (*Output, error) {
	owner := eoi.Owner()
	if caller.ProfileIDFor(owner.Type) != owner.ProfileID {
		return nil, errors.NewForbiddenError("only the initiator may update an EOI")
	}
	if eoi.Status != models.EoiStatusDraft {
		return nil, errors.NewInvalidStateError("update", string(eoi.Status))
	}

	applyPatch(eoi, input)
	eoi.UpdatedAt = time.Now().UTC()

	rows, err := h.eois.UpdateDraft(ctx, eoi)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errors.NewInvalidStateError("update", "not draft")
	}

	h.logger.Info("eoi draft updated", map[string]interface{}{
		"eoiId": eoi.ID,
	})

	return &Output{
		EoiID:     eoi.ID,
		Status:    string(eoi.Status),
		UpdatedAt: eoi.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func applyPatch(eoi *models.Eoi, input *Input) {
	if input.Title != nil {
		eoi.Title = *input.Title
	}
	if input.Description != nil {
		eoi.Description = *input.Description
	}
	if input.ProposedCommissionRate != nil {
		eoi.ProposedCommissionRate = input.ProposedCommissionRate
	}
	if input.ExpectedDealSize != nil {
		eoi.ExpectedDealSize = input.ExpectedDealSize
	}
	if input.Exclusivity != nil {
		eoi.Exclusivity = *input.Exclusivity
	}
	if input.Timeline != nil {
		eoi.Timeline = *input.Timeline
	}
	if input.TargetRegions != nil {
		eoi.TargetRegions = input.TargetRegions
	}
	if input.TargetIndustries != nil {
		eoi.TargetIndustries = input.TargetIndustries
	}
	if input.TargetCustomerTypes != nil {
		eoi.TargetCustomerTypes = input.TargetCustomerTypes
	}
	if input.ValidUntil != nil {
		eoi.ValidUntil = input.ValidUntil
	}
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
