package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertKind classifies what raised an alert.
type AlertKind string

const (
	AlertAnomaly   AlertKind = "ANOMALY"
	AlertDeadline  AlertKind = "DEADLINE"
	AlertThreshold AlertKind = "THRESHOLD"
	AlertESGScore  AlertKind = "ESG_SCORE"
)

// Severity orders alerts for triage.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Alert always references exactly one company. Alerts are never deleted;
// the only mutation is Resolve.
type Alert struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Kind        AlertKind
	Severity    Severity
	Message     string
	Details     map[string]any
	TriggeredAt time.Time
	Resolved    bool
	ResolvedAt  *time.Time
}

// AlertMatch describes an existing alert that suppresses a new one.
type AlertMatch struct {
	CompanyID       uuid.UUID
	Kind            AlertKind
	MessageContains string
	TriggeredAfter  time.Time
	// UnresolvedOnly ignores alerts that were already resolved.
	UnresolvedOnly bool
}

// AlertFilter narrows an alert listing. Zero-valued fields are ignored.
type AlertFilter struct {
	CompanyID *uuid.UUID
	Kind      AlertKind
	Severity  Severity
	Resolved  *bool
}
