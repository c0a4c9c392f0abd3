// Package entity defines the domain models for the signals feature.
package entity

import (
	"math"
	"time"
)

// Bar is one sampled interval of price activity.
// Time is zero when the provider did not supply a timestamp.
type Bar struct {
	Time   time.Time // Start of the sampled interval (optional)
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether open, high, low and close are all present and finite.
// Providers encode a missing price as NaN.
func (b Bar) Valid() bool {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Body is the absolute distance between open and close.
func (b Bar) Body() float64 {
	return math.Abs(b.Close - b.Open)
}

// UpperWick is the distance from the top of the body to the high.
func (b Bar) UpperWick() float64 {
	return b.High - math.Max(b.Open, b.Close)
}

// LowerWick is the distance from the bottom of the body to the low.
func (b Bar) LowerWick() float64 {
	return math.Min(b.Open, b.Close) - b.Low
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }
