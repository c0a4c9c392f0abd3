package entity

import "time"

// Direction is the side of a trade setup.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Candidate is a scored, gated trade setup for one symbol and timeframe.
// RewardRisk is never below Timeframe.MinRewardRisk and Confidence is always
// within [55, 95].
type Candidate struct {
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	RewardRisk float64   `json:"reward_risk_ratio"`
	Confidence int       `json:"confidence"`
	Timeframe  Timeframe `json:"timeframe"`
	TradeType  TradeType `json:"trade_type"`
	Analysis   Analysis  `json:"analysis"`
	Reasoning  string    `json:"reasoning"`
}

// Outcome values of a persisted signal.
const (
	OutcomePending = "pending"
	OutcomeWin     = "win"
	OutcomeLoss    = "loss"
)

// GeneratedByBot marks records produced by the engine.
const GeneratedByBot = "bot"

// Signal is the persisted form of a Candidate.
type Signal struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Direction      Direction `json:"direction"`
	EntryPrice     float64   `json:"entry_price"`
	StopLoss       float64   `json:"stop_loss"`
	TakeProfit     float64   `json:"take_profit"`
	Confidence     int       `json:"confidence"`
	Reasoning      string    `json:"reasoning"`
	Tier           string    `json:"tier"`
	IsPublic       bool      `json:"is_public"`
	TradeType      TradeType `json:"trade_type"`
	Timeframe      Timeframe `json:"timeframe"`
	RewardRisk     float64   `json:"reward_risk_ratio"`
	Analysis       Analysis  `json:"analysis"`
	GeneratedBy    string    `json:"generated_by"`
	Outcome        string    `json:"outcome"`
	IsBroadcast    bool      `json:"is_broadcast"`
	MatchedUserIDs []string  `json:"matched_user_ids"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// Candidate returns the trade setup the signal was persisted from.
func (s Signal) Candidate() Candidate {
	return Candidate{
		Symbol:     s.Symbol,
		Direction:  s.Direction,
		EntryPrice: s.EntryPrice,
		StopLoss:   s.StopLoss,
		TakeProfit: s.TakeProfit,
		RewardRisk: s.RewardRisk,
		Confidence: s.Confidence,
		Timeframe:  s.Timeframe,
		TradeType:  s.TradeType,
		Analysis:   s.Analysis,
		Reasoning:  s.Reasoning,
	}
}

// PendingSignal is the slice of a stored signal the duplicate guard needs.
type PendingSignal struct {
	Symbol    string
	Direction Direction
	CreatedAt time.Time
}
