package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sitewise/internal/report/models"
	"sitewise/pkg/platform/sentinel"
	txcontext "sitewise/pkg/platform/tx"
)

// Postgres persists inspection reports and findings. Insert methods run
// against the transaction carried in ctx when one is present, so the ingest
// path's atomicity is decided by the caller's TxRunner, not here.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) InsertReport(ctx context.Context, report *models.InspectionReport) (int64, error) {
	const query = `
		INSERT INTO inspection_reports (inspector_id, template_id, location, inspection_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		report.InspectorID,
		report.TemplateID,
		report.Location,
		report.InspectionDate,
		string(report.Status),
	).Scan(&report.ID)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	return report.ID, nil
}

func (s *Postgres) InsertFinding(ctx context.Context, finding *models.InspectionFinding) error {
	const query = `
		INSERT INTO inspection_findings (report_id, checklist_item_id, status, observation_text, severity, evidence_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		finding.ReportID,
		finding.ChecklistItemID,
		string(finding.Status),
		finding.ObservationText,
		finding.Severity,
		finding.EvidenceURL,
	).Scan(&finding.ID)
	if err != nil {
		return fmt.Errorf("insert finding: %w", err)
	}
	return nil
}

func (s *Postgres) ListReports(ctx context.Context) ([]models.ReportSummary, error) {
	const query = `
		SELECT r.id, r.inspection_date, r.status, r.location,
		       u.username AS inspector_name, t.title AS template_title
		FROM inspection_reports r
		JOIN users u ON r.inspector_id = u.id
		JOIN checklist_templates t ON r.template_id = t.id
		ORDER BY r.inspection_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.ReportSummary
	for rows.Next() {
		var r models.ReportSummary
		if err := rows.Scan(&r.ID, &r.InspectionDate, &r.Status, &r.Location, &r.InspectorName, &r.TemplateTitle); err != nil {
			return nil, fmt.Errorf("scan report summary: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report summaries: %w", err)
	}
	return reports, nil
}

func (s *Postgres) GetReportHeader(ctx context.Context, id int64) (*models.ReportHeader, error) {
	const query = `
		SELECT r.id, r.inspector_id, r.template_id, r.location, r.inspection_date, r.status,
		       u.username AS inspector_name, t.title AS template_title
		FROM inspection_reports r
		JOIN users u ON r.inspector_id = u.id
		JOIN checklist_templates t ON r.template_id = t.id
		WHERE r.id = $1
	`
	var header models.ReportHeader
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&header.ID,
		&header.InspectorID,
		&header.TemplateID,
		&header.Location,
		&header.InspectionDate,
		&header.Status,
		&header.InspectorName,
		&header.TemplateTitle,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get report header: %w", err)
	}
	return &header, nil
}

func (s *Postgres) ListFindingDetails(ctx context.Context, reportID int64) ([]models.FindingDetail, error) {
	const query = `
		SELECT f.id AS finding_id, f.status, f.observation_text, f.severity, f.evidence_url,
		       i.id AS checklist_item_id, i.item_text, i.category,
		       c.id AS capa_id, c.action_description, c.status AS capa_status, c.target_date,
		       u.username AS assigned_user
		FROM inspection_findings f
		JOIN checklist_items i ON f.checklist_item_id = i.id
		LEFT JOIN capa_actions c ON f.id = c.finding_id
		LEFT JOIN users u ON c.assigned_to = u.id
		WHERE f.report_id = $1
		ORDER BY i.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("list finding details: %w", err)
	}
	defer rows.Close()

	var findings []models.FindingDetail
	for rows.Next() {
		var f models.FindingDetail
		if err := rows.Scan(
			&f.FindingID,
			&f.Status,
			&f.ObservationText,
			&f.Severity,
			&f.EvidenceURL,
			&f.ItemID,
			&f.ItemText,
			&f.Category,
			&f.CapaID,
			&f.ActionDescription,
			&f.CapaStatus,
			&f.TargetDate,
			&f.AssignedUser,
		); err != nil {
			return nil, fmt.Errorf("scan finding detail: %w", err)
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate finding details: %w", err)
	}
	return findings, nil
}
