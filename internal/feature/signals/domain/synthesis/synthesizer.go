// Package synthesis turns a structural analysis into a directional, scored
// and reward:risk-gated trade candidate.
package synthesis

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
)

// Confidence scoring.
const (
	BaseConfidence     = 50
	TrapBonus          = 20
	BiasBonus          = 10
	DivergenceBonus    = 8
	KeyLevelBonus      = 7
	TrendBonus         = 5
	VolatilityPenalty  = 5
	TrendStrengthFloor = 1.5
	VolatilityCeiling  = 0.02

	MinConfidence = 55
	MaxConfidence = 95
)

// Fallback stop and target multipliers applied when no zone is available.
const (
	BuyStopFallback    = 0.995
	BuyTargetFallback  = 1.015
	SellStopFallback   = 1.005
	SellTargetFallback = 0.985
	minRiskDistance    = 1e-12
)

// Synthesize builds a candidate from the analysis, or returns nil when there
// is no tradable setup or the reward:risk ratio misses the timeframe minimum.
func Synthesize(a entity.Analysis) *entity.Candidate {
	dir, confidence, reasons, ok := direction(a)
	if !ok {
		return nil
	}
	confidence, reasons = adjust(a, confidence, reasons)

	price := a.CurrentPrice
	entry, stop, target := levels(a.Symbol, dir, price, a.SupplyZones, a.DemandZones)

	rr := rewardRisk(entry, stop, target)
	if rr < a.Timeframe.MinRewardRisk() {
		return nil
	}
	reasons = append(reasons, fmt.Sprintf("reward:risk %.2f on %s (minimum %.1f)", rr, a.Timeframe, a.Timeframe.MinRewardRisk()))

	return &entity.Candidate{
		Symbol:     a.Symbol,
		Direction:  dir,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		RewardRisk: rr,
		Confidence: confidence,
		Timeframe:  a.Timeframe,
		TradeType:  a.Timeframe.TradeType(),
		Analysis:   a,
		Reasoning:  strings.Join(reasons, "; "),
	}
}

// direction picks the side and base confidence. A trap outranks bias.
func direction(a entity.Analysis) (entity.Direction, int, []string, bool) {
	if a.Trap.IsTrap {
		base := BaseConfidence + TrapBonus + int(math.Floor(a.Trap.Strength*10))
		switch a.Trap.Direction {
		case entity.BullTrap:
			return entity.DirectionSell, base, []string{fmt.Sprintf("bull trap above prior highs (strength %.2f)", a.Trap.Strength)}, true
		case entity.BearTrap:
			return entity.DirectionBuy, base, []string{fmt.Sprintf("bear trap below prior lows (strength %.2f)", a.Trap.Strength)}, true
		}
	}

	switch a.Bias {
	case entity.BiasBullish:
		return entity.DirectionBuy, BaseConfidence + BiasBonus, []string{"bullish institutional bias"}, true
	case entity.BiasBearish:
		return entity.DirectionSell, BaseConfidence + BiasBonus, []string{"bearish institutional bias"}, true
	}
	return "", 0, nil, false
}

func adjust(a entity.Analysis, confidence int, reasons []string) (int, []string) {
	if a.HasDivergence {
		confidence += DivergenceBonus
		reasons = append(reasons, fmt.Sprintf("%s momentum divergence (RSI %.1f)", a.Divergence, a.RSI))
	}
	if a.NearKeyLevel {
		confidence += KeyLevelBonus
		reasons = append(reasons, "price at a key supply/demand level")
	}
	if a.TrendStrength > TrendStrengthFloor {
		confidence += TrendBonus
		reasons = append(reasons, fmt.Sprintf("trend strength %.2f", a.TrendStrength))
	}
	if a.Volatility > VolatilityCeiling {
		confidence -= VolatilityPenalty
		reasons = append(reasons, fmt.Sprintf("elevated volatility %.4f", a.Volatility))
	}
	return clamp(confidence, MinConfidence, MaxConfidence), reasons
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// levels places the stop beyond the nearest protective zone and the target
// at the nearest opposing zone, all rounded to the instrument's precision.
func levels(symbol string, dir entity.Direction, price float64, supply, demand []entity.Zone) (entry, stop, target float64) {
	buffer := instrument.PipBuffer(symbol)

	switch dir {
	case entity.DirectionBuy:
		stop = nearestBelow(demand, price, price*BuyStopFallback) - buffer
		target = nearestAbove(supply, price, price*BuyTargetFallback)
	default:
		stop = nearestAbove(supply, price, price*SellStopFallback) + buffer
		target = nearestBelow(demand, price, price*SellTargetFallback)
	}

	places := instrument.Precision(symbol)
	return round(price, places), round(stop, places), round(target, places)
}

func nearestBelow(zones []entity.Zone, price, fallback float64) float64 {
	best, found := 0.0, false
	for _, z := range zones {
		if z.Price < price && (!found || z.Price > best) {
			best, found = z.Price, true
		}
	}
	if !found {
		return fallback
	}
	return best
}

func nearestAbove(zones []entity.Zone, price, fallback float64) float64 {
	best, found := 0.0, false
	for _, z := range zones {
		if z.Price > price && (!found || z.Price < best) {
			best, found = z.Price, true
		}
	}
	if !found {
		return fallback
	}
	return best
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// rewardRisk is the target distance over the stop distance. A stop sitting
// on the entry yields 0 so the candidate is always gated out.
func rewardRisk(entry, stop, target float64) float64 {
	risk := math.Abs(entry - stop)
	if risk < minRiskDistance {
		return 0
	}
	return math.Abs(target-entry) / risk
}
