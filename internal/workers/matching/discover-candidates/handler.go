// internal/workers/matching/discover-candidates/handler.go
package discovercandidates

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"bdmatch-workers/internal/common/database"
	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/common/metrics"
	"bdmatch-workers/internal/matching"
	"bdmatch-workers/internal/models"
	"bdmatch-workers/internal/store"
	"bdmatch-workers/internal/workers/matching/discover-candidates/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "discover-candidates"
)

type Handler struct {
	config       *Config
	profiles     *store.ProfileStore
	requirements *store.RequirementStore
	scores       *store.ScoreStore
	agg          *matching.Aggregator
	es           *database.ElasticsearchClient
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler builds the discovery handler. es may be nil, in which case
// partner enumeration falls back to Postgres.
func NewHandler(
	config *Config,
	profiles *store.ProfileStore,
	requirements *store.RequirementStore,
	scores *store.ScoreStore,
	agg *matching.Aggregator,
	es *database.ElasticsearchClient,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		profiles:     profiles,
		requirements: requirements,
		scores:       scores,
		agg:          agg,
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
	if input.CompanyID == "" {
		return nil, errors.NewValidationFailedError("companyId is required")
	}

	req, err := h.resolveRequirement(ctx, input)
	if err != nil {
		return nil, err
	}
	if req == nil {
		h.logger.Info("no active requirement, skipping discovery", map[string]interface{}{
			"companyId": input.CompanyID,
		})
		return &Output{
			CompanyID:  input.CompanyID,
			EoiID:      input.EoiID,
			Candidates: []Candidate{},
			Skipped:    true,
		}, nil
	}

	partnerIDs, err := h.enumeratePartners(ctx, req)
	if err != nil {
		return nil, err
	}

	floor := h.config.Floor
	if input.Floor > 0 {
		floor = input.Floor
	}
	limit := h.config.Limit
	if input.Limit > 0 {
		limit = input.Limit
	}

	candidates := h.scorePartners(ctx, partnerIDs, req, floor)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].OverallScore != candidates[j].OverallScore {
			return candidates[i].OverallScore > candidates[j].OverallScore
		}
		return candidates[i].BdPartnerID < candidates[j].BdPartnerID
	})

	retained := len(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	metrics.DiscoveryCandidatesRetained.WithLabelValues(triggerLabel(input)).Observe(float64(retained))

	h.logger.Info("discovery finished", map[string]interface{}{
		"companyId":     input.CompanyID,
		"requirementId": req.ID,
		"evaluated":     len(partnerIDs),
		"retained":      retained,
		"returned":      len(candidates),
	})

	return &Output{
		CompanyID:     input.CompanyID,
		RequirementID: req.ID,
		EoiID:         input.EoiID,
		Candidates:    candidates,
		Evaluated:     len(partnerIDs),
		Retained:      retained,
	}, nil
}

func (h *Handler) resolveRequirement(ctx context.Context, input *Input) (*models.CompanyRequirement, error) {
	if input.RequirementID != "" {
		return h.requirements.GetRequirement(ctx, input.RequirementID)
	}
	return h.requirements.GetActiveRequirementForCompany(ctx, input.CompanyID)
}

func (h *Handler) enumeratePartners(ctx context.Context, req *models.CompanyRequirement) ([]string, error) {
	if h.es != nil {
		eq := queries.VerifiedPartnersQuery{
			Index:      queries.PartnerIndex,
			Industries: append(append([]string{}, req.RequiredIndustries...), req.PreferredIndustries...),
			Regions:    append(append([]string{}, req.RequiredRegions...), req.PreferredRegions...),
		}
		eq.Pagination.Size = 1000

		ids, err := queries.FetchVerifiedPartnerIDs(ctx, h.es.Client, eq)
		if err == nil {
			return ids, nil
		}
		h.logger.Warn("search enumeration failed, falling back to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return h.profiles.ListVerifiedPartnerIDs(ctx)
}

// scorePartners scores each partner against the requirement with bounded
// concurrency and keeps those at or above the floor. A failed profile load
// or score insert excludes that one partner and is logged, never fatal.
func (h *Handler) scorePartners(ctx context.Context, partnerIDs []string, req *models.CompanyRequirement, floor int) []Candidate {
	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		candidates = []Candidate{}
	)
	sem := make(chan struct{}, h.config.Concurrency)

	for _, partnerID := range partnerIDs {
		partnerID := partnerID
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			partner, err := h.profiles.GetBdPartnerProfile(ctx, partnerID)
			if err != nil {
				h.logger.Warn("skipping candidate, profile load failed", map[string]interface{}{
					"bdPartnerId": partnerID,
					"error":       err.Error(),
				})
				return
			}

			score := h.agg.ScorePartnerRequirement(partner, req, nil)
			if score == nil || score.OverallScore < floor {
				return
			}

			if err := h.scores.Insert(ctx, score); err != nil {
				h.logger.Warn("score persist failed for retained candidate", map[string]interface{}{
					"bdPartnerId": partnerID,
					"error":       err.Error(),
				})
			}
			metrics.MatchScoresComputed.WithLabelValues("partner_requirement", string(score.MatchType)).Inc()

			mu.Lock()
			candidates = append(candidates, Candidate{
				BdPartnerID:   score.BdPartnerID,
				ScoreID:       score.ID,
				OverallScore:  score.OverallScore,
				MatchType:     string(score.MatchType),
				IsRecommended: score.IsRecommended,
			})
			mu.Unlock()
		}()
	}

	wg.Wait()
	return candidates
}

func triggerLabel(input *Input) string {
	if input.EoiID != "" {
		return "eoi"
	}
	return "manual"
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
