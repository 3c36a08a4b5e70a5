package models

import "time"

// Status of a corrective action. Transitions are monotonic: OPEN → CLOSED,
// never back.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Action is one corrective/preventive action raised against a finding.
type Action struct {
	ID                int64     `json:"id"`
	FindingID         int64     `json:"finding_id"`
	ActionDescription string    `json:"action_description"`
	AssignedTo        int64     `json:"assigned_to"`
	Status            Status    `json:"status"`
	TargetDate        time.Time `json:"target_date"`
}

// CreateRequest is the POST /api/capa body.
type CreateRequest struct {
	FindingID         int64  `json:"finding_id"`
	ActionDescription string `json:"action_description"`
	AssignedTo        int64  `json:"assigned_to"`
	TargetDate        string `json:"target_date"`
}
