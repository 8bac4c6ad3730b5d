package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleClass identifies the drivetrain and, for electric vehicles, the
// carbon intensity of the electricity that charges it.
type VehicleClass string

const (
	VehicleDiesel    VehicleClass = "DIESEL"
	VehiclePetrol    VehicleClass = "PETROL"
	VehicleEVSolar   VehicleClass = "EV_SOLAR"
	VehicleEVNuclear VehicleClass = "EV_NUCLEAR"
	VehicleEVGrid    VehicleClass = "EV_GRID"
)

// VehicleClasses lists every known class in a stable order.
var VehicleClasses = []VehicleClass{
	VehicleDiesel,
	VehiclePetrol,
	VehicleEVSolar,
	VehicleEVNuclear,
	VehicleEVGrid,
}

// Valid reports whether c is one of the known classes.
func (c VehicleClass) Valid() bool {
	for _, known := range VehicleClasses {
		if c == known {
			return true
		}
	}
	return false
}

// Vehicle belongs to exactly one company.
type Vehicle struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	Registration     string
	Class            VehicleClass
	CapacityTonnes   decimal.Decimal
	RegistrationYear int
	CreatedAt        time.Time
}
