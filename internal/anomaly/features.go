package anomaly

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/numeric"
)

// TripSample is the part of a trip the detector looks at.
type TripSample struct {
	TripID       uuid.UUID
	Class        domain.VehicleClass
	DistanceKm   decimal.Decimal
	WeightTonnes decimal.Decimal
	EmissionsKg  decimal.Decimal
}

// SamplesFromTrips keeps the order of trips, which becomes detection order.
func SamplesFromTrips(trips []domain.Trip) []TripSample {
	out := make([]TripSample, 0, len(trips))
	for _, t := range trips {
		out = append(out, TripSample{
			TripID:       t.ID,
			Class:        t.VehicleClass,
			DistanceKm:   t.DistanceKm,
			WeightTonnes: t.WeightTonnes,
			EmissionsKg:  t.EmissionsKg,
		})
	}
	return out
}

// BuildFeatures turns each sample into
//
//	distance, weight, emissions, emissions/km, emissions/(km*w'), weight/km, one-hot(class)
//
// where w' is the weight, or 1 when the weight is zero. Ratios over a zero
// distance are 0. The one-hot block covers only the classes present, in
// sorted order.
func BuildFeatures(samples []TripSample) [][]float64 {
	classes := presentClasses(samples)
	col := make(map[domain.VehicleClass]int, len(classes))
	for i, c := range classes {
		col[c] = i
	}

	const numericCols = 6
	out := make([][]float64, len(samples))
	for i, s := range samples {
		d := s.DistanceKm.InexactFloat64()
		w := s.WeightTonnes.InexactFloat64()
		e := s.EmissionsKg.InexactFloat64()

		row := make([]float64, numericCols+len(classes))
		row[0], row[1], row[2] = d, w, e
		wPrime := w
		if wPrime == 0 {
			wPrime = 1
		}
		row[3], _ = numeric.SafeDivFloat(e, d)
		row[4], _ = numeric.SafeDivFloat(e, d*wPrime)
		row[5], _ = numeric.SafeDivFloat(w, d)
		row[numericCols+col[s.Class]] = 1
		out[i] = row
	}
	return out
}

func presentClasses(samples []TripSample) []domain.VehicleClass {
	seen := make(map[domain.VehicleClass]struct{})
	for _, s := range samples {
		seen[s.Class] = struct{}{}
	}
	classes := make([]domain.VehicleClass, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}

// Standardize rescales every column to zero mean and unit population
// variance. A constant column becomes all zeros. X is not modified.
func Standardize(X [][]float64) [][]float64 {
	if len(X) == 0 {
		return [][]float64{}
	}
	n := float64(len(X))
	dims := len(X[0])
	mean := make([]float64, dims)
	std := make([]float64, dims)

	for _, row := range X {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		// summing identical floats can leave a residue; treat it as constant
		if std[j] <= 1e-12*math.Max(1, math.Abs(mean[j])) {
			std[j] = 0
		}
	}

	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, dims)
		for j, v := range row {
			if std[j] == 0 {
				continue
			}
			scaled[j] = (v - mean[j]) / std[j]
		}
		out[i] = scaled
	}
	return out
}
