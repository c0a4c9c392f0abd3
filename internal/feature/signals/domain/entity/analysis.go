package entity

// ZoneKind tags a structural level as supply or demand.
type ZoneKind string

const (
	ZoneSupply ZoneKind = "supply"
	ZoneDemand ZoneKind = "demand"
)

// Zone is a price level where price previously reversed with wick evidence.
type Zone struct {
	Kind  ZoneKind `json:"kind"`
	Price float64  `json:"price"`
}

// PoolSide tells whether a liquidity pool sits on clustered highs or lows.
type PoolSide string

const (
	PoolHighs PoolSide = "highs"
	PoolLows  PoolSide = "lows"
)

// LiquidityPool is a level where two or more highs (or lows) cluster.
type LiquidityPool struct {
	Side  PoolSide `json:"side"`
	Price float64  `json:"price"`
}

// TrapDirection names the kind of failed breakout.
type TrapDirection string

const (
	TrapNone TrapDirection = "none"
	BullTrap TrapDirection = "bull_trap"
	BearTrap TrapDirection = "bear_trap"
)

// TrapVerdict is the outcome of the trap-setup check on the last bar.
type TrapVerdict struct {
	IsTrap    bool          `json:"is_trap"`
	Direction TrapDirection `json:"direction"`
	Strength  float64       `json:"strength"` // 0..1
}

// Bias is the directional lean inferred from swing structure and EMAs.
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// DivergenceKind describes which side a momentum divergence favours.
type DivergenceKind string

const (
	DivergenceNone    DivergenceKind = "none"
	DivergenceBullish DivergenceKind = "bullish"
	DivergenceBearish DivergenceKind = "bearish"
)

// StopHuntZone is the nearby extreme most likely to be swept.
type StopHuntZone struct {
	Price float64  `json:"price"`
	Side  PoolSide `json:"side"`
}

// Analysis is everything the structural analyzer derives from one window.
type Analysis struct {
	Symbol         string          `json:"symbol"`
	Timeframe      Timeframe       `json:"timeframe"`
	CurrentPrice   float64         `json:"current_price"`
	Volatility     float64         `json:"volatility"`
	TrendStrength  float64         `json:"trend_strength"`
	SupplyZones    []Zone          `json:"supply_zones"`
	DemandZones    []Zone          `json:"demand_zones"`
	LiquidityPools []LiquidityPool `json:"liquidity_pools"`
	Trap           TrapVerdict     `json:"trap"`
	StopHunt       StopHuntZone    `json:"stop_hunt"`
	Bias           Bias            `json:"bias"`
	RSI            float64         `json:"rsi"`
	Divergence     DivergenceKind  `json:"divergence"`
	HasDivergence  bool            `json:"has_divergence"`
	NearKeyLevel   bool            `json:"near_key_level"`
}
