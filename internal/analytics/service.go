package analytics

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glossworks/glossworks/internal/rbac"
)

// Service coordinates report aggregation with the authorization and
// cache layers. Authorization fails closed: no membership, no data.
type Service struct {
	repo       Repository
	cache      *Cache
	authorizer *rbac.Service
	now        func() time.Time
}

// NewService wires a Repository with the cache helper.
func NewService(repo Repository, cache *Cache, authorizer *rbac.Service) *Service {
	return &Service{repo: repo, cache: cache, authorizer: authorizer, now: time.Now}
}

// GetReport returns the detailed dashboard for the time range, cached
// per (organization, range). Any member of the organization may read.
func (s *Service) GetReport(ctx context.Context, userID, orgID int64, tr TimeRange) (*Report, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, err
	}
	return s.loadReport(ctx, orgID, tr)
}

// GetSummary returns the headline counters, cached per organization.
func (s *Service) GetSummary(ctx context.Context, userID, orgID int64) (*Summary, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		var (
			clients  []ClientRow
			invoices []InvoiceRow
			jobs     []JobRow
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			clients, err = s.repo.ListClients(gctx, orgID)
			return
		})
		g.Go(func() (err error) {
			invoices, err = s.repo.ListInvoices(gctx, orgID, time.Time{})
			return
		})
		g.Go(func() (err error) {
			jobs, err = s.repo.ListJobs(gctx, orgID, time.Time{})
			return
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return BuildSummary(clients, invoices, jobs), nil
	}

	var summary Summary
	if err := s.cache.FetchJSON(ctx, keySummary(orgID), &summary, loader); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Snapshot computes the report and persists it as a durable row,
// bypassing the cache. Staff only.
func (s *Service) Snapshot(ctx context.Context, userID, orgID int64, tr TimeRange) (*Report, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	report, err := s.computeReport(ctx, orgID, tr)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSnapshot(ctx, orgID, tr, payload); err != nil {
		return nil, err
	}
	return report, nil
}

// WarmCache primes the report cache for every time range. Used by the
// nightly warmup job; skips authorization since no user is acting.
func (s *Service) WarmCache(ctx context.Context, orgID int64) error {
	for _, tr := range TimeRanges {
		if _, err := s.loadReport(ctx, orgID, tr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) loadReport(ctx context.Context, orgID int64, tr TimeRange) (*Report, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.computeReport(ctx, orgID, tr)
	}
	var report Report
	if err := s.cache.FetchJSON(ctx, keyReport(orgID, tr), &report, loader); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Service) computeReport(ctx context.Context, orgID int64, tr TimeRange) (*Report, error) {
	window := WindowFor(tr, s.now())

	var (
		clients  []ClientRow
		invoices []InvoiceRow
		jobs     []JobRow
		feedback []FeedbackRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = s.repo.ListClients(gctx, orgID)
		return
	})
	g.Go(func() (err error) {
		invoices, err = s.repo.ListInvoices(gctx, orgID, window.PrevStart)
		return
	})
	g.Go(func() (err error) {
		jobs, err = s.repo.ListJobs(gctx, orgID, window.PrevStart)
		return
	})
	g.Go(func() (err error) {
		feedback, err = s.repo.ListFeedback(gctx, orgID, window.PrevStart)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := BuildReport(window, clients, invoices, jobs, feedback)
	return &report, nil
}
