// Package stats computes the dashboard's grouped counts. Nothing is cached;
// every call recomputes against current store state.
package stats

import (
	"context"

	"golang.org/x/sync/errgroup"

	dErrors "sitewise/pkg/domain-errors"
)

// StatusCount is one row of the reports-by-status aggregate.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CategoryCount is one row of the failed-findings-by-category aggregate.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Summary is the GET /api/stats response.
type Summary struct {
	ReportStatus      []StatusCount   `json:"reportStatus"`
	DefectsByCategory []CategoryCount `json:"defectsByCategory"`
}

// Store runs the two grouped counts.
type Store interface {
	CountReportsByStatus(ctx context.Context) ([]StatusCount, error)
	CountFailedFindingsByCategory(ctx context.Context) ([]CategoryCount, error)
}

// Service aggregates inspection statistics.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Summary runs both counts concurrently; the aggregates are independent so
// neither waits on the other.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var summary Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.store.CountReportsByStatus(gctx)
		if err != nil {
			return err
		}
		summary.ReportStatus = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.store.CountFailedFindingsByCategory(gctx)
		if err != nil {
			return err
		}
		summary.DefectsByCategory = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute stats")
	}

	if summary.ReportStatus == nil {
		summary.ReportStatus = []StatusCount{}
	}
	if summary.DefectsByCategory == nil {
		summary.DefectsByCategory = []CategoryCount{}
	}
	return &summary, nil
}
