package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sitewise/internal/report/models"
	"sitewise/pkg/platform/sentinel"
)

type itemMeta struct {
	Text     string
	Category string
}

type capaRow struct {
	ID           int64
	FindingID    int64
	Description  string
	Status       string
	AssignedUser string
}

// Memory is an in-memory report store for unit tests. It mirrors the
// postgres store's referential behavior closely enough to exercise the
// ingest service: findings referencing unknown checklist items fail the
// way a foreign key violation would.
type Memory struct {
	mu            sync.Mutex
	nextReportID  int64
	nextFindingID int64
	reports       map[int64]models.InspectionReport
	findings      map[int64]models.InspectionFinding
	usernames     map[int64]string
	templates     map[int64]string
	items         map[int64]itemMeta
	capas         []capaRow
}

func NewMemory() *Memory {
	return &Memory{
		reports:   make(map[int64]models.InspectionReport),
		findings:  make(map[int64]models.InspectionFinding),
		usernames: make(map[int64]string),
		templates: make(map[int64]string),
		items:     make(map[int64]itemMeta),
	}
}

// SeedUser registers a username for join results.
func (s *Memory) SeedUser(id int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames[id] = username
}

// SeedTemplate registers a template title for join results.
func (s *Memory) SeedTemplate(id int64, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[id] = title
}

// SeedItem registers a checklist item; findings may only reference seeded
// items, mirroring the foreign key on inspection_findings.
func (s *Memory) SeedItem(id int64, text, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = itemMeta{Text: text, Category: category}
}

// AttachCapa records a CAPA row for the left join in finding details.
func (s *Memory) AttachCapa(id, findingID int64, description, status, assignedUser string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capas = append(s.capas, capaRow{
		ID:           id,
		FindingID:    findingID,
		Description:  description,
		Status:       status,
		AssignedUser: assignedUser,
	})
}

func (s *Memory) InsertReport(_ context.Context, report *models.InspectionReport) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[report.TemplateID]; !ok {
		return 0, fmt.Errorf("insert report: %w", sentinel.ErrForeignKey)
	}
	s.nextReportID++
	stored := *report
	stored.ID = s.nextReportID
	s.reports[stored.ID] = stored
	report.ID = stored.ID
	return stored.ID, nil
}

func (s *Memory) InsertFinding(_ context.Context, finding *models.InspectionFinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[finding.ReportID]; !ok {
		return fmt.Errorf("insert finding: %w", sentinel.ErrForeignKey)
	}
	if _, ok := s.items[finding.ChecklistItemID]; !ok {
		return fmt.Errorf("insert finding: %w", sentinel.ErrForeignKey)
	}
	s.nextFindingID++
	stored := *finding
	stored.ID = s.nextFindingID
	s.findings[stored.ID] = stored
	finding.ID = stored.ID
	return nil
}

func (s *Memory) ListReports(_ context.Context) ([]models.ReportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ReportSummary
	for _, r := range s.reports {
		out = append(out, models.ReportSummary{
			ID:             r.ID,
			InspectionDate: r.InspectionDate,
			Status:         r.Status,
			Location:       r.Location,
			InspectorName:  s.usernames[r.InspectorID],
			TemplateTitle:  s.templates[r.TemplateID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].InspectionDate.Equal(out[j].InspectionDate) {
			return out[i].InspectionDate.After(out[j].InspectionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Memory) GetReportHeader(_ context.Context, id int64) (*models.ReportHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.ReportHeader{
		ID:             r.ID,
		InspectorID:    r.InspectorID,
		TemplateID:     r.TemplateID,
		Location:       r.Location,
		InspectionDate: r.InspectionDate,
		Status:         r.Status,
		InspectorName:  s.usernames[r.InspectorID],
		TemplateTitle:  s.templates[r.TemplateID],
	}, nil
}

func (s *Memory) ListFindingDetails(_ context.Context, reportID int64) ([]models.FindingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FindingDetail
	for _, f := range s.findings {
		if f.ReportID != reportID {
			continue
		}
		meta := s.items[f.ChecklistItemID]
		detail := models.FindingDetail{
			FindingID:       f.ID,
			Status:          string(f.Status),
			ObservationText: f.ObservationText,
			Severity:        f.Severity,
			EvidenceURL:     f.EvidenceURL,
			ItemID:          f.ChecklistItemID,
			ItemText:        meta.Text,
			Category:        meta.Category,
		}
		for _, c := range s.capas {
			if c.FindingID == f.ID {
				capaID := c.ID
				desc := c.Description
				status := c.Status
				assigned := c.AssignedUser
				detail.CapaID = &capaID
				detail.ActionDescription = &desc
				detail.CapaStatus = &status
				detail.AssignedUser = &assigned
				break
			}
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// FindingCount reports how many finding rows exist, across all reports.
func (s *Memory) FindingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// ReportCount reports how many report headers exist.
func (s *Memory) ReportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type memorySnapshot struct {
	nextReportID  int64
	nextFindingID int64
	reports       map[int64]models.InspectionReport
	findings      map[int64]models.InspectionFinding
}

func (s *Memory) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memorySnapshot{
		nextReportID:  s.nextReportID,
		nextFindingID: s.nextFindingID,
		reports:       make(map[int64]models.InspectionReport, len(s.reports)),
		findings:      make(map[int64]models.InspectionFinding, len(s.findings)),
	}
	for k, v := range s.reports {
		snap.reports[k] = v
	}
	for k, v := range s.findings {
		snap.findings[k] = v
	}
	return snap
}

func (s *Memory) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReportID = snap.nextReportID
	s.nextFindingID = snap.nextFindingID
	s.reports = snap.reports
	s.findings = snap.findings
}

// MemoryTx runs a function against the memory store with rollback-on-error
// semantics, standing in for a real database transaction in unit tests.
type MemoryTx struct {
	store *Memory
}

func NewMemoryTx(store *Memory) *MemoryTx {
	return &MemoryTx{store: store}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}
