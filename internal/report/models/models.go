package models

import "time"

// ReportStatus is the lifecycle state of a report header. Only SUBMITTED is
// written by this service; other states arrive through back-office tooling.
type ReportStatus string

const (
	StatusSubmitted ReportStatus = "SUBMITTED"
	StatusClosed    ReportStatus = "CLOSED"
)

// FindingStatus is the recorded outcome for one checklist item.
type FindingStatus string

const (
	FindingPass FindingStatus = "PASS"
	FindingFail FindingStatus = "FAIL"
)

// InspectionReport is the header row. Created once, never mutated here.
type InspectionReport struct {
	ID             int64
	InspectorID    int64
	TemplateID     int64
	Location       string
	InspectionDate time.Time
	Status         ReportStatus
}

// InspectionFinding is one outcome row. Immutable after creation; written
// only inside the ingest transaction.
type InspectionFinding struct {
	ID              int64
	ReportID        int64
	ChecklistItemID int64
	Status          FindingStatus
	ObservationText string
	Severity        string
	EvidenceURL     *string
}

// FindingInput is one finding in a submission payload.
type FindingInput struct {
	ChecklistItemID int64  `json:"checklist_item_id"`
	Status          string `json:"status"`
	Observation     string `json:"observation"`
	Severity        string `json:"severity"`
	EvidenceURL     string `json:"evidence_url,omitempty"`
}

// SubmitReportRequest is the POST /api/reports body. The inspector id never
// appears here; it comes from the verified identity.
type SubmitReportRequest struct {
	TemplateID     int64          `json:"template_id"`
	Location       string         `json:"location"`
	InspectionDate string         `json:"inspection_date"`
	Findings       []FindingInput `json:"findings"`
}

// ReportSummary is one row of the dashboard list.
type ReportSummary struct {
	ID             int64        `json:"id"`
	InspectionDate time.Time    `json:"inspection_date"`
	Status         ReportStatus `json:"status"`
	Location       string       `json:"location"`
	InspectorName  string       `json:"inspector_name"`
	TemplateTitle  string       `json:"template_title"`
}

// ReportHeader is the joined header for the detail view.
type ReportHeader struct {
	ID             int64        `json:"id"`
	InspectorID    int64        `json:"inspector_id"`
	TemplateID     int64        `json:"template_id"`
	Location       string       `json:"location"`
	InspectionDate time.Time    `json:"inspection_date"`
	Status         ReportStatus `json:"status"`
	InspectorName  string       `json:"inspector_name"`
	TemplateTitle  string       `json:"template_title"`
}

// FindingDetail joins a finding with its checklist item metadata and, when
// present, the CAPA raised against it. CAPA columns are nullable because a
// finding may have none.
type FindingDetail struct {
	FindingID         int64      `json:"finding_id"`
	Status            string     `json:"status"`
	ObservationText   string     `json:"observation_text"`
	Severity          string     `json:"severity"`
	EvidenceURL       *string    `json:"evidence_url"`
	ItemID            int64      `json:"checklist_item_id"`
	ItemText          string     `json:"item_text"`
	Category          string     `json:"category"`
	CapaID            *int64     `json:"capa_id"`
	ActionDescription *string    `json:"action_description"`
	CapaStatus        *string    `json:"capa_status"`
	TargetDate        *time.Time `json:"target_date"`
	AssignedUser      *string    `json:"assigned_user"`
}

// ReportDetail is the GET /api/reports/{id} response.
type ReportDetail struct {
	Report   ReportHeader    `json:"report"`
	Findings []FindingDetail `json:"findings"`
}
