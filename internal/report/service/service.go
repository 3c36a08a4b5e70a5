package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"sitewise/internal/platform/metrics"
	"sitewise/internal/report/models"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/sentinel"
)

const inspectionDateLayout = "2006-01-02"

// Store persists and reads inspection reports. Insert methods participate
// in the transaction carried by ctx; read methods run against the pool.
type Store interface {
	InsertReport(ctx context.Context, report *models.InspectionReport) (int64, error)
	InsertFinding(ctx context.Context, finding *models.InspectionFinding) error
	ListReports(ctx context.Context) ([]models.ReportSummary, error)
	GetReportHeader(ctx context.Context, id int64) (*models.ReportHeader, error)
	ListFindingDetails(ctx context.Context, reportID int64) ([]models.FindingDetail, error)
}

// Service owns the transactional ingest path and the joined read paths.
type Service struct {
	store   Store
	tx      TxRunner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, tx TxRunner, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, tx: tx, logger: logger, metrics: m}
}

// Submit persists one report header plus its findings as a single atomic
// unit. Any failure rolls back everything; no partial report id is ever
// returned. An empty findings list is legal and commits a header-only
// report.
func (s *Service) Submit(ctx context.Context, inspectorID int64, req models.SubmitReportRequest) (int64, error) {
	if req.TemplateID <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "template_id is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "location is required")
	}
	inspectionDate, err := time.Parse(inspectionDateLayout, req.InspectionDate)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "inspection_date must be YYYY-MM-DD")
	}
	for _, f := range req.Findings {
		if f.ChecklistItemID <= 0 {
			return 0, dErrors.New(dErrors.CodeBadRequest, "findings require a checklist_item_id")
		}
		if f.Status == "" {
			return 0, dErrors.New(dErrors.CodeBadRequest, "findings require a status")
		}
	}

	var reportID int64
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		report := &models.InspectionReport{
			InspectorID:    inspectorID,
			TemplateID:     req.TemplateID,
			Location:       strings.TrimSpace(req.Location),
			InspectionDate: inspectionDate,
			Status:         models.StatusSubmitted,
		}
		id, err := s.store.InsertReport(txCtx, report)
		if err != nil {
			return err
		}

		for _, input := range req.Findings {
			finding := &models.InspectionFinding{
				ReportID:        id,
				ChecklistItemID: input.ChecklistItemID,
				Status:          models.FindingStatus(input.Status),
				ObservationText: input.Observation,
				Severity:        input.Severity,
			}
			if input.EvidenceURL != "" {
				url := input.EvidenceURL
				finding.EvidenceURL = &url
			}
			if err := s.store.InsertFinding(txCtx, finding); err != nil {
				return err
			}
		}

		reportID = id
		return nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IngestRollbacks.Inc()
		}
		s.logger.ErrorContext(ctx, "report submission rolled back",
			"inspector_id", inspectorID,
			"template_id", req.TemplateID,
			"findings", len(req.Findings),
			"error", err.Error(),
		)
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to submit report")
	}

	if s.metrics != nil {
		s.metrics.ReportsSubmitted.Inc()
	}
	return reportID, nil
}

// List returns all reports for the dashboard, newest inspection first.
func (s *Service) List(ctx context.Context) ([]models.ReportSummary, error) {
	reports, err := s.store.ListReports(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
	}
	return reports, nil
}

// Get returns one report with its findings, checklist metadata and
// left-joined CAPA state, findings ordered by checklist item id.
func (s *Service) Get(ctx context.Context, id int64) (*models.ReportDetail, error) {
	header, err := s.store.GetReportHeader(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load report")
	}

	findings, err := s.store.ListFindingDetails(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load findings")
	}
	if findings == nil {
		findings = []models.FindingDetail{}
	}

	return &models.ReportDetail{Report: *header, Findings: findings}, nil
}
