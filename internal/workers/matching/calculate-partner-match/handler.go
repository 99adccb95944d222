// internal/workers/matching/calculate-partner-match/handler.go
package calculatepartnermatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/common/metrics"
	"bdmatch-workers/internal/matching"
	"bdmatch-workers/internal/models"
	"bdmatch-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-partner-match"
)

type Handler struct {
	config       *Config
	profiles     *store.ProfileStore
	requirements *store.RequirementStore
	scores       *store.ScoreStore
	agg          *matching.Aggregator
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(
	config *Config,
	profiles *store.ProfileStore,
	requirements *store.RequirementStore,
	scores *store.ScoreStore,
	agg *matching.Aggregator,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		profiles:     profiles,
		requirements: requirements,
		scores:       scores,
		agg:          agg,
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
	if input.BdPartnerID == "" || input.RequirementID == "" {
		return nil, errors.NewValidationFailedError("bdPartnerId and requirementId are required")
	}

	if !input.Force {
		existing, err := h.scores.LatestValidForRequirement(ctx, input.BdPartnerID, input.RequirementID, time.Now().UTC())
		if err != nil {
			h.logger.Warn("stale-score lookup failed, recomputing", map[string]interface{}{
				"bdPartnerId":   input.BdPartnerID,
				"requirementId": input.RequirementID,
				"error":         err.Error(),
			})
		} else if existing != nil {
			return outputFromScore(existing, true), nil
		}
	}

	partner, err := h.profiles.GetBdPartnerProfile(ctx, input.BdPartnerID)
	if err != nil {
		return nil, err
	}

	req, err := h.requirements.GetRequirement(ctx, input.RequirementID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, errors.NewValidationFailedError(err.Error())
	}

	score := h.agg.ScorePartnerRequirement(partner, req, input.Threshold)
	if score == nil {
		return nil, errors.NewComputationSkippedError(
			fmt.Sprintf("no scoreable pairing for partner %s and requirement %s", input.BdPartnerID, input.RequirementID))
	}

	if err := h.scores.Insert(ctx, score); err != nil {
		return nil, err
	}

	metrics.MatchScoresComputed.WithLabelValues("partner_requirement", string(score.MatchType)).Inc()

	h.logger.Info("partner match score calculated", map[string]interface{}{
		"bdPartnerId":   score.BdPartnerID,
		"requirementId": score.RequirementID,
		"overallScore":  score.OverallScore,
		"matchType":     string(score.MatchType),
		"isRecommended": score.IsRecommended,
	})

	return outputFromScore(score, false), nil
}

func outputFromScore(score *models.MatchingScore, reused bool) *Output {
	return &Output{
		ScoreID:       score.ID,
		BdPartnerID:   score.BdPartnerID,
		CompanyID:     score.CompanyID,
		OverallScore:  score.OverallScore,
		MatchType:     string(score.MatchType),
		IsRecommended: score.IsRecommended,
		Dimensions: DimensionScores{
			Industry:     score.IndustryScore,
			Region:       score.RegionScore,
			Experience:   score.ExperienceScore,
			Availability: score.AvailabilityScore,
			Commission:   score.CommissionScore,
		},
		CalculatedAt: score.CalculatedAt.Format(time.RFC3339),
		ExpiresAt:    score.ExpiresAt.Format(time.RFC3339),
		Reused:       reused,
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
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
