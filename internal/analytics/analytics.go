// Package analytics aggregates a company's trip history into yearly trends,
// threshold breaches and per-vehicle-class efficiency. Every query accepts
// records in any order and returns an empty, non-nil slice for empty input.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/numeric"
)

// Record is the slice of a trip the analytics need.
type Record struct {
	Date         time.Time
	DistanceKm   decimal.Decimal
	WeightTonnes decimal.Decimal
	EmissionsKg  decimal.Decimal
	VehicleClass domain.VehicleClass
}

// FromTrips projects stored trips onto analytics records.
func FromTrips(trips []domain.Trip) []Record {
	out := make([]Record, 0, len(trips))
	for _, t := range trips {
		out = append(out, Record{
			Date:         t.TripDate,
			DistanceKm:   t.DistanceKm,
			WeightTonnes: t.WeightTonnes,
			EmissionsKg:  t.EmissionsKg,
			VehicleClass: t.VehicleClass,
		})
	}
	return out
}

// YearTrend is one calendar year of emissions.
type YearTrend struct {
	Year             int             `json:"year"`
	TotalEmissions   decimal.Decimal `json:"total_emissions"`
	AverageEmissions decimal.Decimal `json:"avg_emissions"`
	TripCount        int             `json:"trip_count"`
	// YoYGrowthPercentage is null when the previous year's total is zero.
	YoYGrowthPercentage decimal.NullDecimal `json:"yoy_growth_percentage"`
	IsIncreasing        bool                `json:"is_increasing"`
}

type yearBucket struct {
	year  int
	total decimal.Decimal
	count int
}

// byYear groups records by calendar year, newest first.
func byYear(records []Record) []yearBucket {
	idx := make(map[int]int)
	var buckets []yearBucket
	for _, r := range records {
		y := r.Date.Year()
		i, ok := idx[y]
		if !ok {
			i = len(buckets)
			idx[y] = i
			buckets = append(buckets, yearBucket{year: y, total: decimal.Zero})
		}
		buckets[i].total = buckets[i].total.Add(r.EmissionsKg)
		buckets[i].count++
	}
	sort.Slice(buckets, func(a, b int) bool { return buckets[a].year > buckets[b].year })
	return buckets
}

// Trends returns yearly totals, newest first, with growth relative to the
// next-older year in the result. The oldest year has no basis and reports
// zero growth.
func Trends(records []Record) []YearTrend {
	buckets := byYear(records)
	out := make([]YearTrend, len(buckets))
	for i, b := range buckets {
		out[i] = YearTrend{
			Year:                b.year,
			TotalEmissions:      b.total,
			AverageEmissions:    b.total.Div(decimal.NewFromInt(int64(b.count))).RoundBank(3),
			TripCount:           b.count,
			YoYGrowthPercentage: decimal.NewNullDecimal(decimal.Zero),
		}
	}
	for i := 0; i < len(out)-1; i++ {
		prev := out[i+1].TotalEmissions
		growth := numeric.SafeDiv(out[i].TotalEmissions.Sub(prev), prev)
		if !growth.Valid {
			out[i].YoYGrowthPercentage = growth
			continue
		}
		pct := growth.Decimal.Mul(numeric.Hundred)
		out[i].YoYGrowthPercentage = decimal.NewNullDecimal(pct.RoundBank(2))
		out[i].IsIncreasing = pct.IsPositive()
	}
	return out
}

// YearThreshold reports one year's total against a mass threshold.
type YearThreshold struct {
	Year             int             `json:"year"`
	YearlyEmissions  decimal.Decimal `json:"yearly_emissions"`
	ExceedsThreshold bool            `json:"exceeds_threshold"`
	// ExcessEmissions is negative when the year is under the threshold.
	ExcessEmissions decimal.Decimal `json:"excess_emissions"`
}

// ThresholdStatus flags each year, newest first, whose total exceeds threshold.
func ThresholdStatus(records []Record, threshold decimal.Decimal) []YearThreshold {
	buckets := byYear(records)
	out := make([]YearThreshold, len(buckets))
	for i, b := range buckets {
		out[i] = YearThreshold{
			Year:             b.year,
			YearlyEmissions:  b.total,
			ExceedsThreshold: b.total.GreaterThan(threshold),
			ExcessEmissions:  b.total.Sub(threshold),
		}
	}
	return out
}

// VehicleEfficiency is the rollup for one vehicle class.
type VehicleEfficiency struct {
	VehicleClass            domain.VehicleClass `json:"vehicle_class"`
	Trips                   int                 `json:"trips"`
	TotalEmissions          decimal.Decimal     `json:"total_emissions"`
	AverageEmissionsPerTrip decimal.Decimal     `json:"avg_emissions_per_trip"`
	TotalDistance           decimal.Decimal     `json:"total_distance"`
	// EmissionsPerKm is null when the class has no distance on record.
	EmissionsPerKm decimal.NullDecimal `json:"emissions_per_km"`
}

// VehicleEfficiencies rolls records up per vehicle class, highest total
// emissions first. Ties are ordered by class name.
func VehicleEfficiencies(records []Record) []VehicleEfficiency {
	idx := make(map[domain.VehicleClass]int)
	out := []VehicleEfficiency{}
	for _, r := range records {
		i, ok := idx[r.VehicleClass]
		if !ok {
			i = len(out)
			idx[r.VehicleClass] = i
			out = append(out, VehicleEfficiency{
				VehicleClass:   r.VehicleClass,
				TotalEmissions: decimal.Zero,
				TotalDistance:  decimal.Zero,
			})
		}
		out[i].Trips++
		out[i].TotalEmissions = out[i].TotalEmissions.Add(r.EmissionsKg)
		out[i].TotalDistance = out[i].TotalDistance.Add(r.DistanceKm)
	}
	for i := range out {
		v := &out[i]
		v.AverageEmissionsPerTrip = v.TotalEmissions.Div(decimal.NewFromInt(int64(v.Trips))).RoundBank(3)
		v.EmissionsPerKm = numeric.Round(numeric.SafeDiv(v.TotalEmissions, v.TotalDistance), 4)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if c := out[a].TotalEmissions.Cmp(out[b].TotalEmissions); c != 0 {
			return c > 0
		}
		return out[a].VehicleClass < out[b].VehicleClass
	})
	return out
}

// Totals sums emissions and distance over records.
func Totals(records []Record) (emissionsKg, distanceKm decimal.Decimal) {
	emissionsKg, distanceKm = decimal.Zero, decimal.Zero
	for _, r := range records {
		emissionsKg = emissionsKg.Add(r.EmissionsKg)
		distanceKm = distanceKm.Add(r.DistanceKm)
	}
	return emissionsKg, distanceKm
}
