// internal/workers/lender/rank-lender-matches/handler.go
package ranklendermatches

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/models"
)

const TaskType = "rank-lender-matches"

type Handler struct {
	config *Config
	logger logger.Logger
	errors *errors.ErrorHandler
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: cfg,
		logger: log,
		errors: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleContext(context.Background(), client, job)
}

func (h *Handler) HandleContext(parent context.Context, client worker.JobClient, job entities.Job) {
	done := metrics.TrackJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(parent, h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, GetInputSchema(), &input); err != nil {
		done(h.errors.HandleJobError(ctx, client, job, err).Code)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		done(h.errors.HandleJobError(ctx, client, job, err).Code)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		done(string(errors.ErrCodeEngineUnavailable))
		return
	}
	done("")
}

// Execute orders qualified lenders ahead of the rest and by score within
// each group. Ties keep their input order.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	matches := make([]models.MatchResult, 0, len(input.Matches))
	for _, m := range input.Matches {
		if input.OnlyQualified && !m.Qualified {
			continue
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Qualified != matches[j].Qualified {
			return matches[i].Qualified
		}
		return matches[i].MatchScore > matches[j].MatchScore
	})

	limit := input.Limit
	if limit <= 0 || limit > h.config.MaxItems {
		limit = h.config.MaxItems
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := &Output{
		RankedMatches:  make([]RankedMatch, 0, len(matches)),
		FeatureSummary: make(map[string]string, len(matches)),
	}
	for i, m := range matches {
		key, more := splitFeatures(m.Features, h.config.KeyFeatures)
		out.RankedMatches = append(out.RankedMatches, RankedMatch{
			MatchResult:  m,
			Rank:         i + 1,
			KeyFeatures:  key,
			MoreFeatures: more,
		})
		out.FeatureSummary[m.ID] = summarize(key, more)
	}

	h.logger.Debug("matches ranked", map[string]interface{}{
		"inputCount":  len(input.Matches),
		"outputCount": len(out.RankedMatches),
	})
	return out, nil
}

func splitFeatures(features []string, n int) ([]string, int) {
	if len(features) <= n {
		return append([]string{}, features...), 0
	}
	return append([]string{}, features[:n]...), len(features) - n
}

func summarize(key []string, more int) string {
	s := strings.Join(key, ", ")
	if more > 0 {
		s += fmt.Sprintf(" +%d more", more)
	}
	return s
}
