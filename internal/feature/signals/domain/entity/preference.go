package entity

// UserPreference is a user's stated trading preferences. An empty field means
// "no preference" and matches anything on that dimension.
type UserPreference struct {
	UserID              string
	TradingStyle        TradeType
	PreferredPairs      []string
	PreferredTimeframes []Timeframe
}
