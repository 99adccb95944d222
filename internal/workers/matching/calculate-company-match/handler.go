// internal/workers/matching/calculate-company-match/handler.go
package calculatecompanymatch

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
	TaskType = "calculate-company-match"
)

type Handler struct {
	config       *Config
	profiles     *store.ProfileStore
	preferences  *store.PreferenceStore
	scores       *store.ScoreStore
	agg          *matching.Aggregator
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(
	config *Config,
	profiles *store.ProfileStore,
	preferences *store.PreferenceStore,
	scores *store.ScoreStore,
	agg *matching.Aggregator,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		profiles:     profiles,
		preferences:  preferences,
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
	if input.CompanyID == "" || input.PreferenceID == "" {
		return nil, errors.NewValidationFailedError("companyId and preferenceId are required")
	}

	if !input.Force {
		existing, err := h.scores.LatestValidForPreference(ctx, input.CompanyID, input.PreferenceID, time.Now().UTC())
		if err != nil {
			h.logger.Warn("stale-score lookup failed, recomputing", map[string]interface{}{
				"companyId":    input.CompanyID,
				"preferenceId": input.PreferenceID,
				"error":        err.Error(),
			})
		} else if existing != nil {
			return outputFromScore(existing, true), nil
		}
	}

	company, err := h.profiles.GetCompanyProfile(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	pref, err := h.preferences.GetPreference(ctx, input.PreferenceID)
	if err != nil {
		return nil, err
	}
	if err := pref.Validate(); err != nil {
		return nil, errors.NewValidationFailedError(err.Error())
	}

	score := h.agg.ScoreCompanyPreference(company, pref, input.Threshold)
	if score == nil {
		return nil, errors.NewComputationSkippedError(
			fmt.Sprintf("no scoreable pairing for company %s and preference %s", input.CompanyID, input.PreferenceID))
	}

	if err := h.scores.Insert(ctx, score); err != nil {
		return nil, err
	}

	metrics.MatchScoresComputed.WithLabelValues("company_preference", string(score.MatchType)).Inc()

	h.logger.Info("company match score calculated", map[string]interface{}{
		"companyId":     score.CompanyID,
		"preferenceId":  score.PreferenceID,
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
			BusinessType: score.BusinessTypeScore,
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
