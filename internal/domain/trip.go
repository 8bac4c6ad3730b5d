package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trip is one delivery event.
// EmissionsKg is computed once when the trip is created and never recomputed,
// so historical figures stay auditable even if emission factors change.
type Trip struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	VehicleID uuid.UUID
	// VehicleClass is joined from the vehicle on read.
	VehicleClass  VehicleClass
	TripDate      time.Time
	DistanceKm    decimal.Decimal
	WeightTonnes  decimal.Decimal
	EmissionsKg   decimal.Decimal
	IsAnomaly     bool
	AnomalyScore  *float64
	InvoiceSource string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AnomalyFlag marks a trip as anomalous with the score the detector gave it.
type AnomalyFlag struct {
	TripID uuid.UUID
	Score  float64
}

// TripFilter narrows a per-company trip listing.
type TripFilter struct {
	// Anomalous, when non-nil, keeps only trips whose flag matches.
	Anomalous *bool
}
