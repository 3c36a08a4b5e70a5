package handler_test

//go:generate mockgen -source=handler.go -destination=mocks/capa-mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sitewise/internal/capa/handler"
	"sitewise/internal/capa/handler/mocks"
	"sitewise/internal/capa/models"
	jwttoken "sitewise/internal/jwt_token"
	"sitewise/internal/platform/middleware"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/testutil"
)

const testSigningKey = "unit-test-signing-key"

type CapaHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	tokens      *jwttoken.Service
	router      chi.Router
}

func TestCapaHandlerSuite(t *testing.T) {
	suite.Run(t, new(CapaHandlerSuite))
}

func (s *CapaHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.tokens = jwttoken.NewService(testSigningKey, "sitewise-test", time.Hour)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.New(s.mockService, logger, jwttoken.NewVerifierAdapter(s.tokens))

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *CapaHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CapaHandlerSuite) bearerFor(userID int64, role, username string) string {
	token, err := s.tokens.GenerateAccessToken(userID, role, username)
	s.Require().NoError(err)
	return token
}

func (s *CapaHandlerSuite) TestCreateMissingTokenIsUnauthorized() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/capa", models.CreateRequest{FindingID: 1})

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *CapaHandlerSuite) TestCreateTamperedTokenIsForbidden() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/capa", models.CreateRequest{FindingID: 1})
	req = testutil.WithBearer(req, s.bearerFor(7, "manager", "maria")+"x")

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *CapaHandlerSuite) TestCreateExpiredTokenIsForbidden() {
	expired := jwttoken.NewService(testSigningKey, "sitewise-test", -time.Minute)
	token, err := expired.GenerateAccessToken(7, "manager", "maria")
	s.Require().NoError(err)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/capa", models.CreateRequest{FindingID: 1})
	req = testutil.WithBearer(req, token)

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *CapaHandlerSuite) TestCreatePropagatesIdentityFromToken() {
	body := models.CreateRequest{
		FindingID:         42,
		ActionDescription: "Install guardrails",
		AssignedTo:        9,
		TargetDate:        "2026-10-01",
	}
	wantIdent := middleware.Identity{UserID: 7, Role: "manager", Username: "maria"}
	created := &models.Action{
		ID:                1,
		FindingID:         42,
		ActionDescription: "Install guardrails",
		AssignedTo:        9,
		Status:            models.StatusOpen,
		TargetDate:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	s.mockService.EXPECT().
		Create(gomock.Any(), wantIdent, body).
		Return(created, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/capa", body)
	req = testutil.WithBearer(req, s.bearerFor(7, "manager", "maria"))

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[models.Action](s.T(), rr)
	s.Equal(created.ID, resp.ID)
	s.Equal(models.StatusOpen, resp.Status)
}

func (s *CapaHandlerSuite) TestCreateUnknownFindingIsBadRequest() {
	s.mockService.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeBadRequest, "finding does not exist"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/capa", models.CreateRequest{FindingID: 999})
	req = testutil.WithBearer(req, s.bearerFor(7, "manager", "maria"))

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *CapaHandlerSuite) TestCreateStoreFailureHidesDetail() {
	s.mockService.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/capa", models.CreateRequest{FindingID: 1})
	req = testutil.WithBearer(req, s.bearerFor(7, "manager", "maria"))

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	s.NotContains(rr.Body.String(), "pq:")
}

func (s *CapaHandlerSuite) TestCloseReturnsClosedAction() {
	closed := &models.Action{ID: 5, FindingID: 42, Status: models.StatusClosed}
	s.mockService.EXPECT().
		Close(gomock.Any(), int64(5)).
		Return(closed, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/api/capa/5/close", nil)
	req = testutil.WithBearer(req, s.bearerFor(7, "manager", "maria"))

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[models.Action](s.T(), rr)
	s.Equal(models.StatusClosed, resp.Status)
}

func (s *CapaHandlerSuite) TestCloseUnknownIDIsNotFound() {
	s.mockService.EXPECT().
		Close(gomock.Any(), int64(404)).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "CAPA not found"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/api/capa/404/close", nil)
	req = testutil.WithBearer(req, s.bearerFor(7, "manager", "maria"))

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *CapaHandlerSuite) TestCloseNonNumericIDIsBadRequest() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/api/capa/abc/close", nil)
	req = testutil.WithBearer(req, s.bearerFor(7, "manager", "maria"))

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}
