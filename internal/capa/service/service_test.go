package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewise/internal/capa/models"
	"sitewise/internal/capa/store"
	"sitewise/internal/platform/metrics"
	"sitewise/internal/platform/middleware"
	dErrors "sitewise/pkg/domain-errors"
)

var inspector = middleware.Identity{UserID: 1, Role: "inspector", Username: "asha"}
var manager = middleware.Identity{UserID: 2, Role: "manager", Username: "ravi"}

func newTestService(t *testing.T, policy Policy) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mem.SeedFinding(55)
	return NewService(mem, policy, slog.New(slog.DiscardHandler), metrics.NewForTest()), mem
}

func validRequest() models.CreateRequest {
	return models.CreateRequest{
		FindingID:         55,
		ActionDescription: "Replace relief valve",
		AssignedTo:        2,
		TargetDate:        "2026-09-30",
	}
}

func TestCreate_HappyPath(t *testing.T) {
	svc, mem := newTestService(t, nil)

	action, err := svc.Create(context.Background(), inspector, validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, action.Status)
	assert.Equal(t, int64(55), action.FindingID)
	assert.Equal(t, 1, mem.Count())
}

func TestCreate_UnknownFindingIsValidationError(t *testing.T) {
	svc, mem := newTestService(t, nil)

	req := validRequest()
	req.FindingID = 999

	_, err := svc.Create(context.Background(), inspector, req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Equal(t, 0, mem.Count())
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.CreateRequest)
	}{
		{"missing finding", func(r *models.CreateRequest) { r.FindingID = 0 }},
		{"missing description", func(r *models.CreateRequest) { r.ActionDescription = " " }},
		{"missing assignee", func(r *models.CreateRequest) { r.AssignedTo = 0 }},
		{"bad target date", func(r *models.CreateRequest) { r.TargetDate = "soon" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Create(ctx, inspector, req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func TestCreate_ManagerOnlyPolicy(t *testing.T) {
	svc, mem := newTestService(t, ManagerOnly)
	ctx := context.Background()

	_, err := svc.Create(ctx, inspector, validRequest())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Equal(t, 0, mem.Count())

	_, err = svc.Create(ctx, manager, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Count())
}

func TestClose_TransitionsOpenToClosed(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, inspector, validRequest())
	require.NoError(t, err)

	closed, err := svc.Close(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.Equal(t, created.ID, closed.ID)
}

func TestClose_UnknownIDIsNotFound(t *testing.T) {
	svc, mem := newTestService(t, nil)

	_, err := svc.Close(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Equal(t, 0, mem.Count())
}

func TestClose_IsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, inspector, validRequest())
	require.NoError(t, err)

	first, err := svc.Close(ctx, created.ID)
	require.NoError(t, err)
	second, err := svc.Close(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusClosed, first.Status)
	assert.Equal(t, models.StatusClosed, second.Status)
}
