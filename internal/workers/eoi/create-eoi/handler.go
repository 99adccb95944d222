// internal/workers/eoi/create-eoi/handler.go
package createeoi

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
	"github.com/google/uuid"
)

const (
	TaskType = "create-eoi"
)

// MessagePublisher publishes a workflow message. Implemented by the
// Camunda client; mocked in tests.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, messageName, correlationKey string, variables map[string]interface{}) error
}

type Handler struct {
	config       *Config
	identity     *store.IdentityResolver
	profiles     *store.ProfileStore
	eois         *store.EoiStore
	publisher    MessagePublisher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler builds the create-eoi handler. publisher may be nil, in which
// case no discovery trigger is emitted.
func NewHandler(
	config *Config,
	identity *store.IdentityResolver,
	profiles *store.ProfileStore,
	eois *store.EoiStore,
	publisher MessagePublisher,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		identity:     identity,
		profiles:     profiles,
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
	if err := validateInput(input); err != nil {
		return nil, err
	}

	caller, err := h.identity.Resolve(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}

	initiatorType := models.InitiatorType(input.InitiatorType)
	if !caller.HasSide(initiatorType) {
		return nil, errors.NewForbiddenError(
			fmt.Sprintf("caller has no %s profile", initiatorType))
	}

	eoi := h.buildEoi(input, caller, initiatorType)

	if eoi.ProductID != "" {
		if err := h.checkProduct(ctx, eoi); err != nil {
			return nil, err
		}
	}

	if input.SendImmediately {
		h.stampValidity(eoi, input.ValidityDays)
	}

	if err := h.eois.Create(ctx, eoi); err != nil {
		return nil, err
	}

	h.logger.Info("eoi created", map[string]interface{}{
		"eoiId":         eoi.ID,
		"initiatorType": string(eoi.InitiatorType),
		"status":        string(eoi.Status),
	})

	discoveryTriggered := false
	if eoi.Status == models.EoiStatusSent && eoi.InitiatorType == models.InitiatorCompany {
		discoveryTriggered = h.triggerDiscovery(ctx, eoi)
	}

	output := &Output{
		EoiID:              eoi.ID,
		Status:             string(eoi.Status),
		InitiatorType:      string(eoi.InitiatorType),
		BdPartnerID:        eoi.BdPartnerID,
		CompanyID:          eoi.CompanyID,
		CreatedAt:          eoi.CreatedAt.Format(time.RFC3339),
		DiscoveryTriggered: discoveryTriggered,
	}
	if eoi.ExpiresAt != nil {
		output.ExpiresAt = eoi.ExpiresAt.Format(time.RFC3339)
	}
	return output, nil
}

func (h *Handler) buildEoi(input *Input, caller *models.Identity, initiatorType models.InitiatorType) *models.Eoi {
	now := time.Now().UTC()
	eoi := &models.Eoi{
		ID:                     uuid.New().String(),
		BdPartnerID:            input.BdPartnerID,
		CompanyID:              input.CompanyID,
		InitiatorType:          initiatorType,
		ProductID:              input.ProductID,
		EoiType:                input.EoiType,
		Status:                 models.EoiStatusDraft,
		Title:                  input.Title,
		Description:            input.Description,
		ProposedCommissionRate: input.ProposedCommissionRate,
		ExpectedDealSize:       input.ExpectedDealSize,
		Exclusivity:            input.Exclusivity,
		Timeline:               input.Timeline,
		TargetRegions:          input.TargetRegions,
		TargetIndustries:       input.TargetIndustries,
		TargetCustomerTypes:    input.TargetCustomerTypes,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	// The initiator side always comes from the verified identity.
	if initiatorType == models.InitiatorCompany {
		eoi.CompanyID = caller.CompanyID
	} else {
		eoi.BdPartnerID = caller.BdPartnerID
	}

	if input.SendImmediately {
		eoi.Status = models.EoiStatusSent
	}
	return eoi
}

// checkProduct enforces that a referenced product exists, is active, and
// belongs to the company side of the EOI.
func (h *Handler) checkProduct(ctx context.Context, eoi *models.Eoi) error {
	product, err := h.profiles.GetProduct(ctx, eoi.ProductID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return errors.NewValidationFailedError(
			fmt.Sprintf("product %s is not active", product.ID))
	}
	if eoi.CompanyID != "" && product.CompanyID != eoi.CompanyID {
		return errors.NewForbiddenError(
			fmt.Sprintf("product %s does not belong to company %s", product.ID, eoi.CompanyID))
	}
	return nil
}

func (h *Handler) stampValidity(eoi *models.Eoi, validityDays int) {
	days := h.config.DefaultValidityDays
	if validityDays > 0 {
		days = validityDays
	}
	now := time.Now().UTC()
	until := now.AddDate(0, 0, days)
	eoi.ValidFrom = &now
	eoi.ValidUntil = &until
	eoi.ExpiresAt = &until
}

// triggerDiscovery publishes the discovery message for a company-initiated
// EOI. Fire and forget: a publish failure is logged and never fails the
// creation.
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

	h.logger.Info("discovery triggered", map[string]interface{}{
		"eoiId":     eoi.ID,
		"companyId": eoi.CompanyID,
	})
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
