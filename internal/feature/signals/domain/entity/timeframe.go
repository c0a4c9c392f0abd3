package entity

import "time"

// Timeframe is the sampling interval label used for bars (e.g. "15m", "1h").
type Timeframe string

const (
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// DefaultTimeframes is the scan order used when a caller does not supply one.
var DefaultTimeframes = []Timeframe{Timeframe15m, Timeframe1h, Timeframe4h}

// TradeType classifies a setup by holding horizon.
type TradeType string

const (
	TradeTypeScalp    TradeType = "scalp"
	TradeTypeIntraday TradeType = "intraday"
	TradeTypeSwing    TradeType = "swing"
)

// TradeType derives the holding horizon from the timeframe.
// Timeframes up to 15m are scalps, 30m and 1h are intraday, anything longer
// (or unknown) is a swing.
func (tf Timeframe) TradeType() TradeType {
	switch tf {
	case "1m", Timeframe5m, Timeframe15m:
		return TradeTypeScalp
	case Timeframe30m, Timeframe1h:
		return TradeTypeIntraday
	default:
		return TradeTypeSwing
	}
}

// MinRewardRisk is the smallest reward:risk ratio a candidate on this
// timeframe may carry.
func (tf Timeframe) MinRewardRisk() float64 {
	switch tf.TradeType() {
	case TradeTypeScalp:
		return 1.5
	case TradeTypeIntraday:
		return 2.0
	default:
		return 2.5
	}
}

// Tier is the coarse milestone label stored with a persisted signal.
func (tf Timeframe) Tier() string {
	switch tf.TradeType() {
	case TradeTypeScalp:
		return "short_term"
	case TradeTypeIntraday:
		return "medium_term"
	default:
		return "long_term"
	}
}

// Duration returns the wall-clock length of one bar, or 0 when unknown.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case "1m":
		return time.Minute
	case Timeframe5m:
		return 5 * time.Minute
	case Timeframe15m:
		return 15 * time.Minute
	case Timeframe30m:
		return 30 * time.Minute
	case Timeframe1h:
		return time.Hour
	case Timeframe4h:
		return 4 * time.Hour
	case Timeframe1d:
		return 24 * time.Hour
	default:
		return 0
	}
}
