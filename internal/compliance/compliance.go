// Package compliance derives financial exposure from emissions totals:
// savings against a baseline, regulatory penalty risk and the effect of the
// ESG score on borrowing cost. All functions are pure.
package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/numeric"
)

var (
	// PenaltyRate is the share of annual turnover charged once the
	// threshold is exceeded, regardless of how far it is exceeded.
	PenaltyRate = decimal.RequireFromString("0.05")
	// BaseRate is the borrowing rate before any ESG adjustment.
	BaseRate = decimal.RequireFromString("0.05")
	// MaxESGReduction is the rate reduction granted at an ESG score of 100.
	MaxESGReduction = decimal.RequireFromString("0.02")
	// BorrowingShare is the assumed annual borrowing as a share of turnover.
	BorrowingShare = decimal.RequireFromString("0.3")

	kgPerTonne = decimal.NewFromInt(1000)
	bpsPerUnit = decimal.NewFromInt(10000)
)

// SavingsResult compares current emissions to the company baseline.
type SavingsResult struct {
	Kg         decimal.Decimal `json:"savings_kg"`
	Percentage decimal.Decimal `json:"savings_percentage"`
	Tonnes     decimal.Decimal `json:"savings_tonnes"`
}

// Savings returns baseline-current in kg, as a percentage of baseline and in
// tonnes. A zero baseline yields all zeros.
func Savings(current, baseline decimal.Decimal) SavingsResult {
	if baseline.IsZero() {
		return SavingsResult{Kg: decimal.Zero, Percentage: decimal.Zero, Tonnes: decimal.Zero}
	}
	kg := baseline.Sub(current)
	pct := numeric.OrZero(numeric.SafeDiv(kg, baseline)).Mul(numeric.Hundred)
	return SavingsResult{
		Kg:         kg.RoundBank(2),
		Percentage: pct.RoundBank(2),
		Tonnes:     kg.Div(kgPerTonne).RoundBank(3),
	}
}

// PenaltyResult is the regulatory exposure for one emissions total.
type PenaltyResult struct {
	ExceedsThreshold bool            `json:"exceeds_threshold"`
	PotentialPenalty decimal.Decimal `json:"potential_penalty"`
	ExcessEmissions  decimal.Decimal `json:"excess_emissions_kg"`
	ExcessPercentage decimal.Decimal `json:"excess_percentage"`
	Threshold        decimal.Decimal `json:"threshold_kg"`
}

// PenaltyRisk applies a flat PenaltyRate of turnover once total exceeds
// threshold. The penalty is a cliff, not a gradient: it does not scale with
// the size of the excess.
func PenaltyRisk(total, threshold, turnover decimal.Decimal) PenaltyResult {
	res := PenaltyResult{
		PotentialPenalty: decimal.Zero,
		ExcessEmissions:  decimal.Zero,
		ExcessPercentage: decimal.Zero,
		Threshold:        threshold,
	}
	if !total.GreaterThan(threshold) {
		return res
	}
	excess := total.Sub(threshold)
	res.ExceedsThreshold = true
	res.PotentialPenalty = turnover.Mul(PenaltyRate).RoundBank(2)
	res.ExcessEmissions = excess.RoundBank(2)
	// a zero threshold has no meaningful relative excess
	res.ExcessPercentage = numeric.OrZero(numeric.SafeDiv(excess, threshold)).Mul(numeric.Hundred).RoundBank(2)
	return res
}

// FinancingResult shows how the ESG score changes the cost of borrowing.
type FinancingResult struct {
	ESGScore         decimal.Decimal `json:"esg_score"`
	BaseRate         decimal.Decimal `json:"base_rate"`
	AdjustedRate     decimal.Decimal `json:"adjusted_rate"`
	RateReduction    decimal.Decimal `json:"rate_reduction"`
	RateReductionBps int64           `json:"rate_reduction_bps"`
	AnnualSavings    decimal.Decimal `json:"annual_savings"`
}

// FinancingImpact reduces BaseRate linearly by up to MaxESGReduction at a
// score of 100 and prices the difference on BorrowingShare of turnover.
// Scores outside [0,100] are clamped.
func FinancingImpact(esgScore float64, turnover decimal.Decimal) FinancingResult {
	score := ClampScore(esgScore)
	reduction := decimal.NewFromFloat(score).Div(numeric.Hundred).Mul(MaxESGReduction)
	adjusted := BaseRate.Sub(reduction)
	principal := turnover.Mul(BorrowingShare)

	savings := principal.Mul(BaseRate).Sub(principal.Mul(adjusted))
	return FinancingResult{
		ESGScore:         numeric.FromFloat(score, numeric.ScorePlaces),
		BaseRate:         BaseRate,
		AdjustedRate:     adjusted,
		RateReduction:    reduction,
		RateReductionBps: reduction.Mul(bpsPerUnit).IntPart(),
		AnnualSavings:    savings.RoundBank(2),
	}
}

var (
	esgBestPerKm  = decimal.RequireFromString("0.2")
	esgWorstPerKm = decimal.RequireFromString("1.0")
)

// ESGScore scores a fleet on its average kg CO2e per km: 100 at or below
// 0.2, 0 at or above 1.0, linear in between. Without trips or distance the
// score is domain.DefaultESGScore.
func ESGScore(totalEmissions, totalDistance decimal.Decimal, trips int) float64 {
	if trips == 0 {
		return domain.DefaultESGScore
	}
	perKm := numeric.SafeDiv(totalEmissions, totalDistance)
	if !perKm.Valid {
		return domain.DefaultESGScore
	}
	switch {
	case perKm.Decimal.LessThanOrEqual(esgBestPerKm):
		return 100
	case perKm.Decimal.GreaterThanOrEqual(esgWorstPerKm):
		return 0
	}
	span := esgWorstPerKm.Sub(esgBestPerKm)
	score := numeric.Hundred.Sub(perKm.Decimal.Sub(esgBestPerKm).Div(span).Mul(numeric.Hundred))
	return ClampScore(score.InexactFloat64())
}

// ClampScore bounds an ESG score to [0,100].
func ClampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
