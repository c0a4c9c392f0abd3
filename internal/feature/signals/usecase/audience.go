package usecase

import (
	"slices"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
)

// Audience scoring weights.
const (
	StyleMatchScore     = 3
	PairMatchScore      = 2
	TimeframeMatchScore = 1
	MatchThreshold      = 3
)

// MatchAudience returns the IDs of users whose preferences score at least
// MatchThreshold against the candidate. Unset preferences count as a match.
func MatchAudience(c entity.Candidate, prefs []entity.UserPreference) []string {
	matched := make([]string, 0, len(prefs))
	for _, p := range prefs {
		if audienceScore(c, p) >= MatchThreshold {
			matched = append(matched, p.UserID)
		}
	}
	return matched
}

func audienceScore(c entity.Candidate, p entity.UserPreference) int {
	score := 0
	if p.TradingStyle == "" || p.TradingStyle == c.TradeType {
		score += StyleMatchScore
	}
	if len(p.PreferredPairs) == 0 || slices.ContainsFunc(p.PreferredPairs, func(pair string) bool {
		return instrument.Normalize(pair) == instrument.Normalize(c.Symbol)
	}) {
		score += PairMatchScore
	}
	if len(p.PreferredTimeframes) == 0 || slices.Contains(p.PreferredTimeframes, c.Timeframe) {
		score += TimeframeMatchScore
	}
	return score
}
