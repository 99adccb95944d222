// internal/workers/eoi/send-eoi/handler.go
package sendeoi

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
	TaskType = "send-eoi"
)

// MessagePublisher publishes a workflow message. Implemented by the
// Camunda client; mocked in tests.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, messageName, correlationKey string, variables map[string]interface{}) error
}

type Handler struct {
	config       *Config
	identity     *store.IdentityResolver
	eois         *store.EoiStore
	publisher    MessagePublisher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(
	config *Config,
	identity *store.IdentityResolver,
	eois *store.EoiStore,
	publisher MessagePublisher,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		identity:     identity,
		eois:         eois,
		publisher:    publisher,
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
	if input.AccessToken == "" || input.EoiID == "" {
		return nil, errors.NewValidationFailedError("accessToken and eoiId are required")
	}

	caller, err := h.identity.Resolve(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}

	eoi, err := h.eois.GetByID(ctx, input.EoiID)
	if err != nil {
		return nil, err
	}

	owner := eoi.Owner()
	if caller.ProfileIDFor(owner.Type) != owner.ProfileID {
		return nil, errors.NewForbiddenError("only the initiator may send an EOI")
	}

	if eoi.Status != models.EoiStatusDraft {
		return nil, errors.NewInvalidStateError("send", string(eoi.Status))
	}

	days := h.config.DefaultValidityDays
	if input.ValidityDays > 0 {
		days = input.ValidityDays
	}
	now := time.Now().UTC()
	until := now.AddDate(0, 0, days)

	rows, err := h.eois.MarkSent(ctx, eoi.ID, now, &until, &until, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// A concurrent writer moved the EOI past draft first.
		return nil, errors.NewInvalidStateError("send", "not draft")
	}

	metrics.EoiTransitions.WithLabelValues("draft", "sent").Inc()

	h.logger.Info("eoi sent", map[string]interface{}{
		"eoiId":     eoi.ID,
		"expiresAt": until.Format(time.RFC3339),
	})

	discoveryTriggered := false
	if eoi.InitiatorType == models.InitiatorCompany {
		discoveryTriggered = h.triggerDiscovery(ctx, eoi)
	}

	return &Output{
		EoiID:              eoi.ID,
		Status:             string(models.EoiStatusSent),
		ValidFrom:          now.Format(time.RFC3339),
		ExpiresAt:          until.Format(time.RFC3339),
		DiscoveryTriggered: discoveryTriggered,
	}, nil
}

// triggerDiscovery publishes the discovery message for a company-initiated
// EOI. Fire and forget: a publish failure is logged and never fails the
// send.
func (h *Handler) triggerDiscovery(ctx context.Context, eoi *models.Eoi) bool {
	if h.publisher == nil {
		return false
	}

	err := h.publisher.PublishMessage(ctx, h.config.DiscoveryMessageName, eoi.ID, map[string]interface{}{
		"eoiId":     eoi.ID,
		"companyId": eoi.CompanyID,
	})
	if err != nil {
		h.logger.Warn("discovery trigger failed", map[string]interface{}{
			"eoiId": eoi.ID,
			"error": err.Error(),
		})
		return false
	}
	return true
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
