// Package anomaly flags delivery trips whose emissions profile does not fit
// the rest of a company's fleet. Two signals are combined with OR: an
// isolation forest over standardized trip features, and a plain rule that
// fires when a trip's emissions exceed the fleet average by a margin.
package anomaly

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/numeric"
)

const (
	// MinTrips is the smallest trip set the detector will train on.
	MinTrips = 10
	// MaxReported caps the anomaly entries returned in a Report.
	MaxReported = 20
	// MaxAlertTrips caps the trip ids carried in the summary alert.
	MaxAlertTrips = 10
	// HighSeverityCount is the anomaly count above which the alert is HIGH.
	HighSeverityCount = 5
)

// InsufficientDataMessage is reported when fewer than MinTrips trips exist.
var InsufficientDataMessage = fmt.Sprintf("Insufficient data (minimum %d trips required)", MinTrips)

var ErrInvalidOptions = errors.New("anomaly: invalid options")

// Options tunes one detection run.
type Options struct {
	// Contamination is the expected share of outliers, in (0, 0.5].
	Contamination float64
	// ThresholdPercentage is the margin above average emissions, in percent,
	// beyond which a trip is anomalous regardless of the model.
	ThresholdPercentage float64
	Seed                uint64
}

// DefaultOptions returns contamination 0.1, a 20% threshold and seed 42.
func DefaultOptions() Options {
	return Options{Contamination: 0.1, ThresholdPercentage: 20, Seed: 42}
}

// Validate reports whether o can drive a run.
func (o Options) Validate() error {
	if math.IsNaN(o.Contamination) || o.Contamination <= 0 || o.Contamination > 0.5 {
		return fmt.Errorf("%w: contamination must be in (0, 0.5], got %v", ErrInvalidOptions, o.Contamination)
	}
	if math.IsNaN(o.ThresholdPercentage) || math.IsInf(o.ThresholdPercentage, 0) || o.ThresholdPercentage < 0 {
		return fmt.Errorf("%w: threshold_percentage must be >= 0, got %v", ErrInvalidOptions, o.ThresholdPercentage)
	}
	return nil
}

// Anomaly is one flagged trip in a Report.
type Anomaly struct {
	TripID             uuid.UUID           `json:"trip_id"`
	EmissionsKg        decimal.Decimal     `json:"emissions_kg"`
	AverageKg          decimal.Decimal     `json:"average_kg"`
	PercentageAboveAvg decimal.NullDecimal `json:"percentage_above_avg"`
	MLDetected         bool                `json:"ml_detected"`
	ThresholdExceeded  bool                `json:"threshold_exceeded"`
	AnomalyScore       decimal.Decimal     `json:"anomaly_score"`
}

// Report is the outcome of a detection run. A declined run has Success false,
// a Message, and an empty Anomalies list.
type Report struct {
	Success             bool            `json:"success"`
	Message             string          `json:"message,omitempty"`
	TotalTrips          int             `json:"total_trips"`
	AnomalyCount        int             `json:"anomaly_count"`
	AnomalyPercentage   decimal.Decimal `json:"anomaly_percentage"`
	AverageEmissions    decimal.Decimal `json:"average_emissions"`
	StdEmissions        decimal.Decimal `json:"std_emissions"`
	ThresholdKg         decimal.Decimal `json:"threshold_kg"`
	ThresholdPercentage decimal.Decimal `json:"threshold_percentage"`
	Anomalies           []Anomaly       `json:"anomalies"`

	// Flags lists every anomalous trip, not just the reported ones.
	Flags []domain.AnomalyFlag `json:"-"`
}

// AlertTripIDs returns the first MaxAlertTrips anomalous trips in detection
// order.
func (r Report) AlertTripIDs() []uuid.UUID {
	n := min(len(r.Flags), MaxAlertTrips)
	ids := make([]uuid.UUID, n)
	for i := range n {
		ids[i] = r.Flags[i].TripID
	}
	return ids
}

// Severity is HIGH for more than HighSeverityCount anomalies, MEDIUM otherwise.
func (r Report) Severity() domain.Severity {
	if r.AnomalyCount > HighSeverityCount {
		return domain.SeverityHigh
	}
	return domain.SeverityMedium
}

func declined(total int) Report {
	return Report{
		Success:    false,
		Message:    InsufficientDataMessage,
		TotalTrips: total,
		Anomalies:  []Anomaly{},
		Flags:      []domain.AnomalyFlag{},
	}
}

// Detect trains a fresh forest on samples and applies the threshold rule.
// Samples are scored in the order given. opts must be valid.
func Detect(samples []TripSample, opts Options) Report {
	n := len(samples)
	if n < MinTrips {
		return declined(n)
	}

	X := Standardize(BuildFeatures(samples))
	forest := NewForest(ForestOptions{Seed: opts.Seed})
	if err := forest.Fit(X); err != nil {
		return declined(n)
	}
	scores := forest.ScoreSamples(X)
	outlier := Predict(scores, opts.Contamination)

	count := decimal.NewFromInt(int64(n))
	sum := decimal.Zero
	for _, s := range samples {
		sum = sum.Add(s.EmissionsKg)
	}
	avg := sum.Div(count)
	thresholdPct := decimal.NewFromFloat(opts.ThresholdPercentage)
	threshold := avg.Mul(decimal.NewFromInt(1).Add(thresholdPct.Div(numeric.Hundred)))
	avgRounded := avg.RoundBank(3)

	report := Report{
		Success:             true,
		TotalTrips:          n,
		AverageEmissions:    avgRounded,
		StdEmissions:        sampleStd(samples).RoundBank(3),
		ThresholdKg:         threshold.RoundBank(3),
		ThresholdPercentage: thresholdPct,
		Anomalies:           []Anomaly{},
		Flags:               []domain.AnomalyFlag{},
	}

	for i, s := range samples {
		exceeded := s.EmissionsKg.GreaterThan(threshold)
		if !outlier[i] && !exceeded {
			continue
		}
		report.Flags = append(report.Flags, domain.AnomalyFlag{TripID: s.TripID, Score: scores[i]})
		if len(report.Anomalies) == MaxReported {
			continue
		}
		above := numeric.SafeDiv(s.EmissionsKg.Sub(avg), avg)
		if above.Valid {
			above.Decimal = above.Decimal.Mul(numeric.Hundred)
		}
		report.Anomalies = append(report.Anomalies, Anomaly{
			TripID:             s.TripID,
			EmissionsKg:        s.EmissionsKg,
			AverageKg:          avgRounded,
			PercentageAboveAvg: numeric.Round(above, 2),
			MLDetected:         outlier[i],
			ThresholdExceeded:  exceeded,
			AnomalyScore:       decimal.NewFromFloat(scores[i]).RoundBank(3),
		})
	}

	report.AnomalyCount = len(report.Flags)
	report.AnomalyPercentage = decimal.NewFromInt(int64(report.AnomalyCount)).
		Div(count).Mul(numeric.Hundred).RoundBank(2)
	return report
}

// sampleStd is the standard deviation with one degree of freedom removed.
func sampleStd(samples []TripSample) decimal.Decimal {
	if len(samples) < 2 {
		return decimal.Zero
	}
	var mean float64
	for _, s := range samples {
		mean += s.EmissionsKg.InexactFloat64()
	}
	mean /= float64(len(samples))
	var ss float64
	for _, s := range samples {
		d := s.EmissionsKg.InexactFloat64() - mean
		ss += d * d
	}
	return decimal.NewFromFloat(math.Sqrt(ss / float64(len(samples)-1)))
}
