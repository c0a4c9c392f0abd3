package structure

import (
	"math"

	"signal_backend/internal/feature/signals/domain/entity"
)

// Thresholds used by the analyzer. Relative tolerances are fractions of price.
const (
	// RecentWindow is the lookback used for pools, traps, stop hunts and RSI.
	RecentWindow = 20
	// TrendAverageBars is the length of the leading and trailing averages.
	TrendAverageBars = 10

	MaxZones = 3
	MaxPools = 5

	// ZoneWickRatio is the wick:body ratio that qualifies a swing as a zone.
	ZoneWickRatio = 0.3
	// PoolTolerance is the relative distance at which two extremes cluster.
	PoolTolerance = 0.002
	// TrapRejectionRatio is the share of the bar range that must be rejected.
	TrapRejectionRatio = 0.5
	// PinBarWickRatio is the wick:body ratio of a pin-bar trap.
	PinBarWickRatio = 2.0
	// PinBarTrapStrength is the fixed strength of a pin-bar trap.
	PinBarTrapStrength = 0.6
	// StopHuntOffset pushes the stop-hunt level beyond the swept extreme.
	StopHuntOffset = 0.002

	FastEMAPeriod = 10
	FastEMABars   = 15
	SlowEMAPeriod = 20
	SlowEMABars   = 25

	// DivergenceProximity is how close the 5-bar extreme must be to the
	// 20-bar extreme to count as a retest.
	DivergenceProximity = 0.002
	DivergenceBars      = 5
	RSIBearishCeiling   = 65.0
	RSIBullishFloor     = 35.0

	// KeyLevelProximity is the distance to a zone that counts as "at" it.
	KeyLevelProximity = 0.003
)

// Analyze computes every structural feature of the window. The window must
// hold at least WindowSize bars; only the last WindowSize are used.
func Analyze(symbol string, tf entity.Timeframe, bars []entity.Bar) (entity.Analysis, error) {
	if len(bars) < WindowSize {
		return entity.Analysis{}, ErrInsufficientHistory
	}
	w := bars[len(bars)-WindowSize:]
	price := w[len(w)-1].Close

	supply := supplyZones(w)
	demand := demandZones(w)
	rsi := relativeStrength(w)
	div := divergence(w, rsi)

	return entity.Analysis{
		Symbol:         symbol,
		Timeframe:      tf,
		CurrentPrice:   price,
		Volatility:     volatility(w),
		TrendStrength:  trendStrength(w),
		SupplyZones:    supply,
		DemandZones:    demand,
		LiquidityPools: liquidityPools(w),
		Trap:           trapVerdict(w),
		StopHunt:       stopHuntZone(w),
		Bias:           institutionalBias(w),
		RSI:            rsi,
		Divergence:     div,
		HasDivergence:  div != entity.DivergenceNone,
		NearKeyLevel:   nearKeyLevel(price, supply, demand),
	}, nil
}

// volatility is the mean bar range relative to the close.
func volatility(w []entity.Bar) float64 {
	var sum float64
	for _, b := range w {
		if b.Close != 0 {
			sum += (b.High - b.Low) / b.Close
		}
	}
	return sum / float64(len(w))
}

// trendStrength combines the drift between the leading and trailing averages
// with the imbalance of up and down closes.
func trendStrength(w []entity.Bar) float64 {
	lead := meanClose(w[:TrendAverageBars])
	trail := meanClose(w[len(w)-TrendAverageBars:])

	var drift float64
	if lead != 0 {
		drift = math.Abs((trail-lead)/lead) * 100
	}

	up, down := 0, 0
	for i := 1; i < len(w); i++ {
		switch {
		case w[i].Close > w[i-1].Close:
			up++
		case w[i].Close < w[i-1].Close:
			down++
		}
	}
	imbalance := math.Abs(float64(up-down)) / float64(len(w)) * 50

	return drift + imbalance
}

// supplyZones finds swing highs confirmed by an upper wick or a bearish close.
// The first three and the last bar are never candidates.
func supplyZones(w []entity.Bar) []entity.Zone {
	var zones []entity.Zone
	for i := len(w) - 2; i >= 3 && len(zones) < MaxZones; i-- {
		b := w[i]
		if b.High <= w[i-1].High || b.High <= w[i-2].High || b.High <= w[i+1].High {
			continue
		}
		if b.UpperWick() > ZoneWickRatio*b.Body() || b.Bearish() {
			zones = appendZone(zones, entity.Zone{Kind: entity.ZoneSupply, Price: b.High})
		}
	}
	return zones
}

// demandZones mirrors supplyZones on lows.
func demandZones(w []entity.Bar) []entity.Zone {
	var zones []entity.Zone
	for i := len(w) - 2; i >= 3 && len(zones) < MaxZones; i-- {
		b := w[i]
		if b.Low >= w[i-1].Low || b.Low >= w[i-2].Low || b.Low >= w[i+1].Low {
			continue
		}
		if b.LowerWick() > ZoneWickRatio*b.Body() || b.Bullish() {
			zones = appendZone(zones, entity.Zone{Kind: entity.ZoneDemand, Price: b.Low})
		}
	}
	return zones
}

func appendZone(zones []entity.Zone, z entity.Zone) []entity.Zone {
	for _, existing := range zones {
		if existing.Price == z.Price {
			return zones
		}
	}
	return append(zones, z)
}

// liquidityPools scans the recent window newest-first for pairs of highs or
// lows within PoolTolerance of each other.
func liquidityPools(w []entity.Bar) []entity.LiquidityPool {
	recent := w[len(w)-RecentWindow:]
	var pools []entity.LiquidityPool

	add := func(p entity.LiquidityPool) {
		for _, existing := range pools {
			if existing == p {
				return
			}
		}
		pools = append(pools, p)
	}

	for j := len(recent) - 1; j > 0; j-- {
		for i := j - 1; i >= 0; i-- {
			if len(pools) >= MaxPools {
				return pools
			}
			hi, hj := recent[i].High, recent[j].High
			if withinTolerance(hi, hj, PoolTolerance) {
				add(entity.LiquidityPool{Side: entity.PoolHighs, Price: math.Max(hi, hj)})
			}
			if len(pools) >= MaxPools {
				return pools
			}
			li, lj := recent[i].Low, recent[j].Low
			if withinTolerance(li, lj, PoolTolerance) {
				add(entity.LiquidityPool{Side: entity.PoolLows, Price: math.Min(li, lj)})
			}
		}
	}
	return pools
}

// trapVerdict checks whether the last bar broke the prior range and was
// rejected back inside it, falling back to a pin-bar check.
func trapVerdict(w []entity.Bar) entity.TrapVerdict {
	recent := w[len(w)-RecentWindow:]
	prior := recent[:len(recent)-2]
	last := w[len(w)-1]

	priorHigh, priorLow := highestHigh(prior), lowestLow(prior)
	rng := last.High - last.Low

	if rng > 0 {
		if last.High > priorHigh && last.Bearish() {
			if rejection := (last.High - last.Close) / rng; rejection > TrapRejectionRatio {
				return entity.TrapVerdict{IsTrap: true, Direction: entity.BullTrap, Strength: math.Min(rejection, 1)}
			}
		}
		if last.Low < priorLow && last.Bullish() {
			if rejection := (last.Close - last.Low) / rng; rejection > TrapRejectionRatio {
				return entity.TrapVerdict{IsTrap: true, Direction: entity.BearTrap, Strength: math.Min(rejection, 1)}
			}
		}
	}

	prev1, prev2 := w[len(w)-2], w[len(w)-3]
	if last.High > prev1.High && last.High > prev2.High && last.UpperWick() > PinBarWickRatio*last.Body() {
		return entity.TrapVerdict{IsTrap: true, Direction: entity.BullTrap, Strength: PinBarTrapStrength}
	}
	if last.Low < prev1.Low && last.Low < prev2.Low && last.LowerWick() > PinBarWickRatio*last.Body() {
		return entity.TrapVerdict{IsTrap: true, Direction: entity.BearTrap, Strength: PinBarTrapStrength}
	}

	return entity.TrapVerdict{Direction: entity.TrapNone}
}

// stopHuntZone picks the recent extreme nearer to price. Ties go to the low.
func stopHuntZone(w []entity.Bar) entity.StopHuntZone {
	recent := w[len(w)-RecentWindow:]
	price := w[len(w)-1].Close
	lo, hi := lowestLow(recent), highestHigh(recent)

	if math.Abs(price-lo) <= math.Abs(hi-price) {
		return entity.StopHuntZone{Side: entity.PoolLows, Price: lo * (1 - StopHuntOffset)}
	}
	return entity.StopHuntZone{Side: entity.PoolHighs, Price: hi * (1 + StopHuntOffset)}
}

// institutionalBias compares swing structure between the two window halves
// and confirms it with a fast/slow EMA cross.
func institutionalBias(w []entity.Bar) entity.Bias {
	half := len(w) / 2
	first, second := w[:half], w[half:]

	higherHighs := highestHigh(second) > highestHigh(first)
	higherLows := lowestLow(second) > lowestLow(first)
	lowerHighs := highestHigh(second) < highestHigh(first)
	lowerLows := lowestLow(second) < lowestLow(first)

	closes := closesOf(w)
	fast := ema(closes[len(closes)-FastEMABars:], FastEMAPeriod)
	slow := ema(closes[len(closes)-SlowEMABars:], SlowEMAPeriod)
	emaBullish := fast > slow

	switch {
	case (higherHighs && higherLows) || (higherLows && emaBullish):
		return entity.BiasBullish
	case (lowerHighs && lowerLows) || (lowerHighs && !emaBullish):
		return entity.BiasBearish
	default:
		return entity.BiasNeutral
	}
}

// relativeStrength is an RSI-style ratio over the recent window's closes.
func relativeStrength(w []entity.Bar) float64 {
	recent := w[len(w)-RecentWindow-1:]
	var gains, losses float64
	for i := 1; i < len(recent); i++ {
		d := recent[i].Close - recent[i-1].Close
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	return 100 - 100/(1+gains/losses)
}

// divergence flags a retest of the recent extreme that momentum does not
// confirm.
func divergence(w []entity.Bar, rsi float64) entity.DivergenceKind {
	recent := w[len(w)-RecentWindow:]
	last5 := w[len(w)-DivergenceBars:]

	if withinTolerance(highestHigh(recent), highestHigh(last5), DivergenceProximity) && rsi < RSIBearishCeiling {
		return entity.DivergenceBearish
	}
	if withinTolerance(lowestLow(recent), lowestLow(last5), DivergenceProximity) && rsi > RSIBullishFloor {
		return entity.DivergenceBullish
	}
	return entity.DivergenceNone
}

func nearKeyLevel(price float64, zoneSets ...[]entity.Zone) bool {
	for _, zones := range zoneSets {
		for _, z := range zones {
			if withinTolerance(price, z.Price, KeyLevelProximity) {
				return true
			}
		}
	}
	return false
}
