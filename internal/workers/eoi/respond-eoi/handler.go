// internal/workers/eoi/respond-eoi/handler.go
package respondeoi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
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
	TaskType = "respond-eoi"
)

const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

type Handler struct {
	config         *Config
	identity       *store.IdentityResolver
	profiles       *store.ProfileStore
	eois           *store.EoiStore
	communications *store.CommunicationStore
	logger         logger.Logger
	errorHandler   *errors.ErrorHandler
}

func NewHandler(
	config *Config,
	identity *store.IdentityResolver,
	profiles *store.ProfileStore,
	eois *store.EoiStore,
	communications *store.CommunicationStore,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:         config,
		identity:       identity,
		profiles:       profiles,
		eois:           eois,
		communications: communications,
		logger:         scoped,
		errorHandler:   errors.NewErrorHandler(scoped),
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
	if err := validateInput(input, h.config.MinMessageLength); err != nil {
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

	if err := h.authorizeResponder(caller, eoi); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !eoi.IsPubliclyVisible(now) {
		// Covers closed EOIs and open ones past expires_at that the
		// expiry sweep has not picked up yet.
		detail := string(eoi.Status)
		if eoi.Status.IsOpenForResponse() {
			detail = "expired"
		}
		return nil, errors.NewInvalidStateError(input.Decision, detail)
	}

	target := models.EoiStatusAccepted
	messageType := models.MessageTypeAcceptance
	if input.Decision == DecisionReject {
		target = models.EoiStatusRejected
		messageType = models.MessageTypeRejection
	}
	rows, err := h.eois.RecordResponse(ctx, eoi.ID, target, input.Message, caller.UserID, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// A concurrent responder or the expiry sweep closed it first.
		return nil, errors.NewInvalidStateError(input.Decision, "already closed")
	}

	metrics.EoiTransitions.WithLabelValues(string(eoi.Status), string(target)).Inc()

	h.logger.Info("eoi response recorded", map[string]interface{}{
		"eoiId":    eoi.ID,
		"decision": input.Decision,
		"status":   string(target),
	})

	commID := h.appendCommunication(ctx, caller, eoi, messageType, input.Message)

	return &Output{
		EoiID:           eoi.ID,
		Status:          string(target),
		ResponseDate:    now.Format(time.RFC3339),
		CommunicationID: commID,
	}, nil
}

// authorizeResponder checks that the caller is the counterparty of the EOI.
// When the EOI already names a profile on the counterparty side, the caller
// must be exactly that profile.
func (h *Handler) authorizeResponder(caller *models.Identity, eoi *models.Eoi) error {
	counterparty := eoi.InitiatorType.Counterparty()
	callerProfile := caller.ProfileIDFor(counterparty)
	if callerProfile == "" {
		return errors.NewForbiddenError("only the counterparty may respond to an EOI")
	}

	var named string
	if counterparty == models.InitiatorCompany {
		named = eoi.CompanyID
	} else {
		named = eoi.BdPartnerID
	}
	if named != "" && named != callerProfile {
		return errors.NewForbiddenError("EOI is addressed to a different counterparty")
	}
	return nil
}

// appendCommunication writes the immutable response record. Failure is
// logged, not propagated: the status transition already happened and must
// not be rolled back by a messaging hiccup.
func (h *Handler) appendCommunication(ctx context.Context, caller *models.Identity, eoi *models.Eoi, messageType, content string) string {
	recipient := h.resolveOwnerUserID(ctx, eoi)

	comm := &models.EoiCommunication{
		ID:          uuid.New().String(),
		EoiID:       eoi.ID,
		FromUserID:  caller.UserID,
		ToUserID:    recipient,
		MessageType: messageType,
		Subject:     fmt.Sprintf("EOI %s: %s", messageType, eoi.Title),
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.communications.Append(ctx, comm); err != nil {
		h.logger.Warn("communication append failed", map[string]interface{}{
			"eoiId": eoi.ID,
			"error": err.Error(),
		})
		return ""
	}
	return comm.ID
}

func (h *Handler) resolveOwnerUserID(ctx context.Context, eoi *models.Eoi) string {
	owner := eoi.Owner()
	if owner.ProfileID == "" {
		return ""
	}

	if owner.Type == models.InitiatorCompany {
		profile, err := h.profiles.GetCompanyProfile(ctx, owner.ProfileID)
		if err != nil {
			return ""
		}
		return profile.UserID
	}
	profile, err := h.profiles.GetBdPartnerProfile(ctx, owner.ProfileID)
	if err != nil {
		return ""
	}
	return profile.UserID
}

func validateInput(input *Input, minMessageLength int) error {
	if input.AccessToken == "" || input.EoiID == "" {
		return errors.NewValidationFailedError("accessToken and eoiId are required")
	}
	if input.Decision != DecisionAccept && input.Decision != DecisionReject {
		return errors.NewValidationFailedError(
			fmt.Sprintf("decision must be %q or %q", DecisionAccept, DecisionReject))
	}
	if len(strings.TrimSpace(input.Message)) < minMessageLength {
		return errors.NewValidationFailedError(
			fmt.Sprintf("response message must be at least %d characters", minMessageLength))
	}
	return nil
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
