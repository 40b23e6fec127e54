package calc

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for a non-positive or non-finite stake or confidence
var ErrInvalidInput = errors.New("stake and confidence must be positive finite numbers")

var (
	// Odds is the fixed price every calculation targets
	Odds = decimal.RequireFromString("1.25")

	one          = decimal.NewFromInt(1)
	hundred      = decimal.NewFromInt(100)
	kellyCap     = decimal.NewFromInt(25)
	probFloor    = decimal.RequireFromString("0.01")
	probCeil     = decimal.RequireFromString("0.99")
	scenarioStep = decimal.NewFromInt(5)
)

// Risk levels by confidence
const (
	RiskLow    = "Baixo"
	RiskMedium = "Médio"
	RiskHigh   = "Alto"
)

// Scenario is the expected value at a shifted confidence
type Scenario struct {
	Probability   decimal.Decimal `json:"probability"`
	ExpectedValue decimal.Decimal `json:"expected_value"`
	ROI           decimal.Decimal `json:"roi"`
}

// Result holds every figure shown by the bet calculator.
// Money and percentages are rounded to two places.
type Result struct {
	Stake      decimal.Decimal `json:"stake"`
	Confidence decimal.Decimal `json:"confidence"`
	Odds       decimal.Decimal `json:"odds"`

	PotentialProfit decimal.Decimal `json:"potential_profit"`
	PotentialReturn decimal.Decimal `json:"potential_return"`
	ExpectedValue   decimal.Decimal `json:"expected_value"`
	ROI             decimal.Decimal `json:"roi"`
	BreakEven       decimal.Decimal `json:"break_even_probability"`

	KellyPercentage     decimal.Decimal `json:"kelly_percentage"`
	KellyInterpretation string          `json:"kelly_interpretation"`
	MaxRecommendedStake decimal.Decimal `json:"max_recommended_stake"`

	RiskLevel string     `json:"risk_level"`
	ShouldBet bool       `json:"should_bet"`
	Scenarios []Scenario `json:"scenarios"`
}

// CalculateBet computes profit, expected value and ROI for a stake at Odds.
// confidence is a percentage (85 means 85%).
func CalculateBet(stake, confidence float64) (*Result, error) {
	if !finite(stake) || !finite(confidence) || stake <= 0 || confidence <= 0 {
		return nil, ErrInvalidInput
	}

	s := decimal.NewFromFloat(stake)
	conf := decimal.NewFromFloat(confidence)

	profit := s.Mul(Odds.Sub(one))
	ev := expectedValue(s, profit, conf.Div(hundred))

	kelly := conf.Div(hundred).Mul(Odds).Sub(one).Div(Odds.Sub(one)).Mul(hundred)
	kelly = decimal.Max(decimal.Zero, decimal.Min(kellyCap, kelly))

	maxStake := decimal.Zero
	if kelly.IsPositive() {
		maxStake = s.Mul(kelly).Div(hundred)
	}

	result := &Result{
		Stake:               s,
		Confidence:          conf,
		Odds:                Odds,
		PotentialProfit:     profit.Round(2),
		PotentialReturn:     s.Mul(Odds).Round(2),
		ExpectedValue:       ev.Round(2),
		ROI:                 ev.Div(s).Mul(hundred).Round(2),
		BreakEven:           one.Div(Odds).Mul(hundred).Round(2),
		KellyPercentage:     kelly.Round(2),
		KellyInterpretation: kellyInterpretation(kelly),
		MaxRecommendedStake: maxStake.Round(2),
		RiskLevel:           RiskLevel(confidence),
		ShouldBet:           ev.IsPositive() && confidence >= 80,
	}

	for _, prob := range []decimal.Decimal{conf.Sub(scenarioStep), conf, conf.Add(scenarioStep)} {
		p := decimal.Max(probFloor, decimal.Min(probCeil, prob.Div(hundred)))
		sev := expectedValue(s, profit, p)
		result.Scenarios = append(result.Scenarios, Scenario{
			Probability:   prob,
			ExpectedValue: sev.Round(2),
			ROI:           sev.Div(s).Mul(hundred).Round(2),
		})
	}

	return result, nil
}

// RiskLevel maps a confidence percentage to its risk label
func RiskLevel(confidence float64) string {
	switch {
	case confidence >= 85:
		return RiskLow
	case confidence >= 80:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// expectedValue is p*profit - (1-p)*stake for a win probability p in [0, 1]
func expectedValue(stake, profit, p decimal.Decimal) decimal.Decimal {
	return p.Mul(profit).Sub(one.Sub(p).Mul(stake))
}

func kellyInterpretation(pct decimal.Decimal) string {
	switch {
	case pct.LessThanOrEqual(decimal.NewFromInt(5)):
		return "Conservador"
	case pct.LessThanOrEqual(decimal.NewFromInt(15)):
		return "Moderado"
	default:
		return "Agressivo"
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
