// Package deadline decides which regulatory deadlines should raise an
// alert for which companies on a given day. It only plans; inserting the
// alerts and suppressing duplicates is left to the caller.
package deadline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

const (
	// HorizonDays bounds what counts as upcoming.
	HorizonDays = 60
	// AlertFromDays and AlertToDays bound the staged warning window.
	AlertFromDays = 30
	AlertToDays   = 60
	// HighSeverityDays is the last day-count that still rates HIGH.
	HighSeverityDays = 45

	defaultRegulation = "CSRD"
)

// DedupWindow is how far back an earlier alert for the same deadline
// suppresses a new one.
const DedupWindow = 7 * 24 * time.Hour

// Candidate is one alert the plan wants to raise.
type Candidate struct {
	CompanyID uuid.UUID
	Deadline  domain.Deadline
	DaysUntil int
	Severity  domain.Severity
	Message   string
	Details   map[string]any
}

// Alert turns the candidate into an unsaved DEADLINE alert.
func (c Candidate) Alert() domain.Alert {
	return domain.Alert{
		CompanyID: c.CompanyID,
		Kind:      domain.AlertDeadline,
		Severity:  c.Severity,
		Message:   c.Message,
		Details:   c.Details,
	}
}

// Match is the existing alert that would make c a duplicate, as seen at now.
// The name is matched in its quoted form so "Q1" does not match "Q1 Report".
func (c Candidate) Match(now time.Time) domain.AlertMatch {
	return domain.AlertMatch{
		CompanyID:       c.CompanyID,
		Kind:            domain.AlertDeadline,
		MessageContains: "'" + c.Deadline.Name + "'",
		TriggeredAfter:  now.Add(-DedupWindow),
		UnresolvedOnly:  true,
	}
}

// Plan is the result of evaluating deadlines on one day.
type Plan struct {
	Upcoming   []domain.Deadline
	Candidates []Candidate
}

// Evaluate keeps the deadlines dated within HorizonDays of today and, for
// each company, proposes an alert for every one between AlertFromDays and
// AlertToDays away. Candidates are ordered by company, then by deadline in
// input order.
func Evaluate(today time.Time, deadlines []domain.Deadline, companies []uuid.UUID) Plan {
	p := Plan{Upcoming: []domain.Deadline{}, Candidates: []Candidate{}}
	for _, d := range deadlines {
		if days := d.DaysUntil(today); days >= 0 && days <= HorizonDays {
			p.Upcoming = append(p.Upcoming, d)
		}
	}

	for _, companyID := range companies {
		for _, d := range p.Upcoming {
			days := d.DaysUntil(today)
			if days < AlertFromDays || days > AlertToDays {
				continue
			}
			p.Candidates = append(p.Candidates, newCandidate(companyID, d, days))
		}
	}
	return p
}

func newCandidate(companyID uuid.UUID, d domain.Deadline, days int) Candidate {
	severity := domain.SeverityMedium
	if days <= HighSeverityDays {
		severity = domain.SeverityHigh
	}
	regulation := d.Regulation
	if regulation == "" {
		regulation = defaultRegulation
	}
	return Candidate{
		CompanyID: companyID,
		Deadline:  d,
		DaysUntil: days,
		Severity:  severity,
		Message:   fmt.Sprintf("%s deadline '%s' approaching in %d days", regulation, d.Name, days),
		Details: map[string]any{
			"deadline_name": d.Name,
			"deadline_date": domain.TruncateDay(d.Date).Format(time.DateOnly),
			"days_until":    days,
			"regulation":    d.Regulation,
		},
	}
}
