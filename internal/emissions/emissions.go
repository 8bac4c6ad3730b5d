// Package emissions is the per-trip emissions model.
// It is a pure function of vehicle class, distance and load; results are
// exact decimals so they can feed penalty thresholds without rounding drift.
package emissions

import (
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// Places is the precision, in decimal places of a kilogram, of every result.
const Places = 3

// factors are kg CO2e per km for an unladen vehicle of each class.
// Electric classes differ by the carbon intensity of their charging source.
var factors = map[domain.VehicleClass]decimal.Decimal{
	domain.VehicleDiesel:    decimal.RequireFromString("0.636"),
	domain.VehiclePetrol:    decimal.RequireFromString("0.580"),
	domain.VehicleEVSolar:   decimal.RequireFromString("0.050"),
	domain.VehicleEVNuclear: decimal.RequireFromString("0.080"),
	domain.VehicleEVGrid:    decimal.RequireFromString("0.235"),
}

// WeightFactor is kg CO2e per km per tonne of cargo.
var WeightFactor = decimal.RequireFromString("0.05")

// Factor returns the per-km factor for class. Unknown classes get the diesel
// factor, the most conservative of the set.
func Factor(class domain.VehicleClass) decimal.Decimal {
	if f, ok := factors[class]; ok {
		return f
	}
	return factors[domain.VehicleDiesel]
}

// Calculate returns kg CO2e for one trip:
//
//	factor(class)*distance + WeightFactor*distance*weight
//
// rounded half to even to Places.
func Calculate(class domain.VehicleClass, distanceKm, weightTonnes decimal.Decimal) decimal.Decimal {
	base := Factor(class).Mul(distanceKm)
	load := WeightFactor.Mul(distanceKm).Mul(weightTonnes)
	return base.Add(load).RoundBank(Places)
}
