package deadline_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/deadline"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

var today = time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

func dueIn(name string, days int) domain.Deadline {
	return domain.Deadline{
		ID:         uuid.New(),
		Name:       name,
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days),
		Regulation: "CSRD",
	}
}

func TestEvaluate_FortyDaysOutIsHigh(t *testing.T) {
	company := uuid.New()
	d := dueIn("Annual Sustainability Report", 40)

	p := deadline.Evaluate(today, []domain.Deadline{d}, []uuid.UUID{company})

	require.Len(t, p.Candidates, 1)
	c := p.Candidates[0]
	assert.Equal(t, company, c.CompanyID)
	assert.Equal(t, 40, c.DaysUntil)
	assert.Equal(t, domain.SeverityHigh, c.Severity)
	assert.Equal(t, "CSRD deadline 'Annual Sustainability Report' approaching in 40 days", c.Message)
	assert.Equal(t, map[string]any{
		"deadline_name": "Annual Sustainability Report",
		"deadline_date": "2026-04-11",
		"days_until":    40,
		"regulation":    "CSRD",
	}, c.Details)
}

func TestEvaluate_SeverityBoundary(t *testing.T) {
	company := uuid.New()

	p := deadline.Evaluate(today,
		[]domain.Deadline{dueIn("a", 45), dueIn("b", 46), dueIn("c", 60)},
		[]uuid.UUID{company})

	require.Len(t, p.Candidates, 3)
	assert.Equal(t, domain.SeverityHigh, p.Candidates[0].Severity)
	assert.Equal(t, domain.SeverityMedium, p.Candidates[1].Severity)
	assert.Equal(t, domain.SeverityMedium, p.Candidates[2].Severity)
}

func TestEvaluate_UpcomingWiderThanAlertWindow(t *testing.T) {
	deadlines := []domain.Deadline{
		dueIn("past", -1),
		dueIn("today", 0),
		dueIn("soon", 29),
		dueIn("window-start", 30),
		dueIn("window-end", 60),
		dueIn("beyond", 61),
	}

	p := deadline.Evaluate(today, deadlines, []uuid.UUID{uuid.New()})

	var upcoming []string
	for _, d := range p.Upcoming {
		upcoming = append(upcoming, d.Name)
	}
	assert.Equal(t, []string{"today", "soon", "window-start", "window-end"}, upcoming)

	var alerted []string
	for _, c := range p.Candidates {
		alerted = append(alerted, c.Deadline.Name)
	}
	assert.Equal(t, []string{"window-start", "window-end"}, alerted)
}

func TestEvaluate_OneCandidatePerCompany(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	p := deadline.Evaluate(today, []domain.Deadline{dueIn("x", 35)}, []uuid.UUID{a, b})

	require.Len(t, p.Candidates, 2)
	assert.Equal(t, a, p.Candidates[0].CompanyID)
	assert.Equal(t, b, p.Candidates[1].CompanyID)
}

func TestEvaluate_NoCompanies(t *testing.T) {
	p := deadline.Evaluate(today, []domain.Deadline{dueIn("x", 35)}, nil)

	assert.Len(t, p.Upcoming, 1)
	assert.NotNil(t, p.Candidates)
	assert.Empty(t, p.Candidates)
}

func TestEvaluate_MissingRegulationDefaultsTag(t *testing.T) {
	d := dueIn("ESRS E1", 50)
	d.Regulation = ""

	p := deadline.Evaluate(today, []domain.Deadline{d}, []uuid.UUID{uuid.New()})

	require.Len(t, p.Candidates, 1)
	assert.Equal(t, "CSRD deadline 'ESRS E1' approaching in 50 days", p.Candidates[0].Message)
}

func TestCandidate_MatchAndAlert(t *testing.T) {
	company := uuid.New()
	p := deadline.Evaluate(today, []domain.Deadline{dueIn("Q2 filing", 40)}, []uuid.UUID{company})
	require.Len(t, p.Candidates, 1)
	c := p.Candidates[0]

	m := c.Match(today)
	assert.Equal(t, company, m.CompanyID)
	assert.Equal(t, domain.AlertDeadline, m.Kind)
	assert.Equal(t, "'Q2 filing'", m.MessageContains)
	assert.Contains(t, c.Message, m.MessageContains)
	assert.Equal(t, today.Add(-7*24*time.Hour), m.TriggeredAfter)
	assert.True(t, m.UnresolvedOnly)

	a := c.Alert()
	assert.Equal(t, domain.AlertDeadline, a.Kind)
	assert.Equal(t, c.Message, a.Message)
	assert.Equal(t, domain.SeverityHigh, a.Severity)
}
