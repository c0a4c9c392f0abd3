// Package dto はsignalsフィーチャーのリクエスト/レスポンスDTOを定義します。
package dto

import "signal_backend/internal/feature/signals/domain/entity"

// Engine actions.
const (
	ActionAnalyzeSingle     = "analyze_single"
	ActionRunBot            = "run_bot"
	ActionSendSignalToUsers = "send_signal_to_users"
)

// EngineRequest は POST /engine のリクエストボディです。
// action によって使用するフィールドが異なります。
type EngineRequest struct {
	Action string `json:"action"`

	// analyze_single
	Symbol     string   `json:"symbol"`
	Timeframes []string `json:"timeframes"`

	// run_bot: インライン設定または保存済みボットのID
	Bot   *BotRequest `json:"bot"`
	BotID string      `json:"bot_id"`

	// send_signal_to_users
	SignalID string `json:"signal_id"`
}

// BotRequest はインラインで渡されるボット設定です。
type BotRequest struct {
	ID            string   `json:"id"`
	Pairs         []string `json:"pairs"`
	Timeframes    []string `json:"timeframes"`
	AutoBroadcast bool     `json:"auto_broadcast"`
	ActorID       string   `json:"actor_id"`
}

// ToEntity はBotRequestをドメインのBotConfigに変換します。
func (b BotRequest) ToEntity() entity.BotConfig {
	return entity.BotConfig{
		ID:            b.ID,
		Pairs:         b.Pairs,
		Timeframes:    Timeframes(b.Timeframes),
		AutoBroadcast: b.AutoBroadcast,
		ActorID:       b.ActorID,
	}
}

// Timeframes はラベルの配列をTimeframeに変換します。空のラベルは除外します。
func Timeframes(labels []string) []entity.Timeframe {
	out := make([]entity.Timeframe, 0, len(labels))
	for _, l := range labels {
		if l != "" {
			out = append(out, entity.Timeframe(l))
		}
	}
	return out
}

// AnalyzeResponse は analyze_single のレスポンスです。セットアップがない場合 signal は null です。
type AnalyzeResponse struct {
	Signal *entity.Candidate `json:"signal"`
}

// RunBotResponse は run_bot のレスポンスです。
type RunBotResponse struct {
	Count   int             `json:"count"`
	Signals []entity.Signal `json:"signals"`
}

// SendResponse は send_signal_to_users のレスポンスです。
type SendResponse struct {
	Notified int `json:"notified"`
}

// ErrorResponse はエラーレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}
