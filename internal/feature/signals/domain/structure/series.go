package structure

import (
	"math"

	"signal_backend/internal/feature/signals/domain/entity"
)

func highestHigh(bars []entity.Bar) float64 {
	hi := math.Inf(-1)
	for _, b := range bars {
		hi = math.Max(hi, b.High)
	}
	return hi
}

func lowestLow(bars []entity.Bar) float64 {
	lo := math.Inf(1)
	for _, b := range bars {
		lo = math.Min(lo, b.Low)
	}
	return lo
}

func meanClose(bars []entity.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}

func closesOf(bars []entity.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// ema returns the final exponential moving average of prices, seeded with
// the simple average of the first period values.
func ema(prices []float64, period int) float64 {
	if period <= 0 || len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		period = len(prices)
	}

	var seed float64
	for _, p := range prices[:period] {
		seed += p
	}
	value := seed / float64(period)

	k := 2.0 / float64(period+1)
	for _, p := range prices[period:] {
		value = (p-value)*k + value
	}
	return value
}

// withinTolerance reports whether b lies within tol (relative to a) of a.
func withinTolerance(a, b, tol float64) bool {
	if a == 0 {
		return b == 0
	}
	return math.Abs(a-b)/math.Abs(a) <= tol
}
