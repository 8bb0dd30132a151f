package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/glossworks/glossworks/internal/analytics"
	jobmetrics "github.com/glossworks/glossworks/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OrgLister enumerates the organizations the warmup walks.
type OrgLister interface {
	ListOrganizationIDs(ctx context.Context) ([]int64, error)
}

// AnalyticsWarmupJob pre-populates the report cache so the first dashboard
// request after expiry does not pay the aggregation cost.
type AnalyticsWarmupJob struct {
	Analytics *analytics.Service
	Orgs      OrgLister
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analyticsSvc *analytics.Service, orgs OrgLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: analyticsSvc,
		Orgs:      orgs,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes analytics warmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmCache)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting analytics warmup")

	orgIDs, err := j.resolveOrgs(ctx, payload)
	if err != nil {
		resultErr = err
		logger.Error("load warmup organizations", slog.Any("error", err))
		return resultErr
	}
	if len(orgIDs) == 0 {
		logger.Info("no organizations discovered for warmup")
		return resultErr
	}

	start := j.now()
	warmed := 0
	for _, orgID := range orgIDs {
		if err := j.warmOrg(ctx, orgID); err != nil {
			resultErr = err
			logger.Error("warm organization", slog.Int64("org_id", orgID), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed analytics warmup",
		slog.Int("organizations", warmed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *AnalyticsWarmupJob) warmOrg(ctx context.Context, orgID int64) error {
	if j.Analytics == nil {
		return nil
	}
	// Bound each organization so one slow tenant cannot stall the run.
	orgCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return j.Analytics.WarmCache(orgCtx, orgID)
}

func (j *AnalyticsWarmupJob) resolveOrgs(ctx context.Context, payload AnalyticsWarmupPayload) ([]int64, error) {
	if payload.OrgID > 0 {
		return []int64{payload.OrgID}, nil
	}
	if j.Orgs == nil {
		return nil, errors.New("analytics warmup: org lister not configured")
	}
	return j.Orgs.ListOrganizationIDs(ctx)
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmCache))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmCache))
}

func (j *AnalyticsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AnalyticsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
