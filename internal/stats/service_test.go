package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sitewise/pkg/domain-errors"
)

type stubStore struct {
	statuses    []StatusCount
	categories  []CategoryCount
	statusErr   error
	categoryErr error
}

func (s *stubStore) CountReportsByStatus(context.Context) ([]StatusCount, error) {
	return s.statuses, s.statusErr
}

func (s *stubStore) CountFailedFindingsByCategory(context.Context) ([]CategoryCount, error) {
	return s.categories, s.categoryErr
}

func TestSummary_ReturnsBothAggregates(t *testing.T) {
	svc := NewService(&stubStore{
		statuses: []StatusCount{
			{Status: "SUBMITTED", Count: 3},
			{Status: "CLOSED", Count: 1},
		},
		categories: []CategoryCount{
			{Category: "Safety", Count: 2},
		},
	})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []StatusCount{
		{Status: "SUBMITTED", Count: 3},
		{Status: "CLOSED", Count: 1},
	}, summary.ReportStatus)
	assert.Equal(t, []CategoryCount{{Category: "Safety", Count: 2}}, summary.DefectsByCategory)
}

func TestSummary_EmptyStoreYieldsEmptySlices(t *testing.T) {
	svc := NewService(&stubStore{})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summary.ReportStatus)
	assert.NotNil(t, summary.DefectsByCategory)
	assert.Empty(t, summary.ReportStatus)
	assert.Empty(t, summary.DefectsByCategory)
}

func TestSummary_PropagatesStoreFailure(t *testing.T) {
	svc := NewService(&stubStore{categoryErr: errors.New("connection refused")})

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
