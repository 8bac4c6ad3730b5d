// Package domain contains the core data types for the fleet carbon compliance
// backend. It depends only on uuid and decimal and is imported by every other
// internal package (repo, service, handler, and the analytics packages).
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultESGScore is the score a company holds before any trip history exists.
const DefaultESGScore = 50.0

// Company is a reporting entity under carbon regulation.
// ESGScore is derived from trip history on demand; the stored value is a
// cache of the last recomputation, not the source of truth.
type Company struct {
	ID             uuid.UUID
	Name           string
	Country        string
	AnnualTurnover decimal.Decimal
	ESGScore       float64
	// BaselineEmissions is the kg CO2e denominator for savings. Nil when unset.
	BaselineEmissions *decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
