package calc_test

import (
	"errors"
	"math"
	"testing"

	"github.com/fortuna/pitchside/internal/calc"
	"github.com/shopspring/decimal"
)

func TestCalculateBet_ReferenceValues(t *testing.T) {
	result, err := calc.CalculateBet(100, 85)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"profit":     {result.PotentialProfit, "25"},
		"return":     {result.PotentialReturn, "125"},
		"ev":         {result.ExpectedValue, "6.25"},
		"roi":        {result.ROI, "6.25"},
		"break_even": {result.BreakEven, "80"},
		"kelly":      {result.KellyPercentage, "25"},
	}
	for name, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s: expected %s, got %s", name, c.want, c.got)
		}
	}

	if result.PotentialProfit.StringFixed(2) != "25.00" {
		t.Errorf("expected profit rendered as 25.00, got %s", result.PotentialProfit.StringFixed(2))
	}
	if result.RiskLevel != calc.RiskLow {
		t.Errorf("expected risk %s, got %s", calc.RiskLow, result.RiskLevel)
	}
	if !result.ShouldBet {
		t.Error("expected positive EV at 85% to recommend the bet")
	}
}

func TestCalculateBet_NegativeExpectedValue(t *testing.T) {
	result, err := calc.CalculateBet(100, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.7*25 - 0.3*100 = -12.5
	if !result.ExpectedValue.Equal(decimal.RequireFromString("-12.5")) {
		t.Errorf("expected EV -12.50, got %s", result.ExpectedValue)
	}
	if !result.KellyPercentage.IsZero() {
		t.Errorf("expected Kelly clamped to 0, got %s", result.KellyPercentage)
	}
	if !result.MaxRecommendedStake.IsZero() {
		t.Errorf("expected no recommended stake, got %s", result.MaxRecommendedStake)
	}
	if result.ShouldBet {
		t.Error("expected negative EV not to be recommended")
	}
	if result.RiskLevel != calc.RiskHigh {
		t.Errorf("expected risk %s, got %s", calc.RiskHigh, result.RiskLevel)
	}
}

func TestCalculateBet_Scenarios(t *testing.T) {
	result, err := calc.CalculateBet(100, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(result.Scenarios))
	}

	want := []string{"75", "80", "85"}
	for i, s := range result.Scenarios {
		if !s.Probability.Equal(decimal.RequireFromString(want[i])) {
			t.Errorf("scenario %d: expected probability %s, got %s", i, want[i], s.Probability)
		}
	}

	// Break-even: EV is zero at exactly 80%.
	if !result.Scenarios[1].ExpectedValue.IsZero() {
		t.Errorf("expected zero EV at break-even, got %s", result.Scenarios[1].ExpectedValue)
	}
}

func TestCalculateBet_RejectsNonPositive(t *testing.T) {
	tests := []struct {
		stake, confidence float64
	}{
		{0, 50},
		{-10, 85},
		{100, 0},
		{100, -1},
	}

	for _, tt := range tests {
		result, err := calc.CalculateBet(tt.stake, tt.confidence)
		if !errors.Is(err, calc.ErrInvalidInput) {
			t.Errorf("CalculateBet(%v, %v): expected ErrInvalidInput, got %v", tt.stake, tt.confidence, err)
		}
		if result != nil {
			t.Errorf("CalculateBet(%v, %v): expected nil result, got %+v", tt.stake, tt.confidence, result)
		}
	}
}

func TestCalculateBet_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name              string
		stake, confidence float64
	}{
		{"nan stake", math.NaN(), 85},
		{"inf stake", math.Inf(1), 85},
		{"negative inf stake", math.Inf(-1), 85},
		{"nan confidence", 100, math.NaN()},
		{"inf confidence", 100, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.CalculateBet(tt.stake, tt.confidence)
			if !errors.Is(err, calc.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %+v", result)
			}
		})
	}
}

func TestRiskLevel(t *testing.T) {
	tests := map[float64]string{
		90:   calc.RiskLow,
		85:   calc.RiskLow,
		84.9: calc.RiskMedium,
		80:   calc.RiskMedium,
		79:   calc.RiskHigh,
	}
	for confidence, want := range tests {
		if got := calc.RiskLevel(confidence); got != want {
			t.Errorf("RiskLevel(%v): expected %s, got %s", confidence, want, got)
		}
	}
}
