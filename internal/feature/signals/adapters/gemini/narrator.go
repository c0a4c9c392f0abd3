// Package gemini はGoogle Gemini APIを使用してシグナルの解説文を生成します。
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// generateFunc はプロンプトからテキストを生成します。テストで差し替えられます。
type generateFunc func(ctx context.Context, prompt string) (string, error)

// Narrator は構造分析の結果を短い解説文に変換します。
type Narrator struct {
	generate generateFunc
}

// NarratorがNarratorインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Narrator = (*Narrator)(nil)

// NewNarrator はADCを使用してNarratorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION
// または GEMINI_API_KEY が必要です。
func NewNarrator(ctx context.Context) (*Narrator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Narrator{
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, DefaultModel, genai.Text(prompt), nil)
			if err != nil {
				return "", fmt.Errorf("gemini API request failed: %w", err)
			}
			return resp.Text(), nil
		},
	}, nil
}

// Narrate はシグナル候補の根拠を2〜3文の解説にまとめます。
func (n *Narrator) Narrate(ctx context.Context, c entity.Candidate) (string, error) {
	return n.generate(ctx, buildPrompt(c))
}

func buildPrompt(c entity.Candidate) string {
	var b strings.Builder
	b.WriteString("Summarize this trade setup for a retail trader in two or three plain sentences. ")
	b.WriteString("Do not add price levels or advice beyond what is given.\n\n")
	fmt.Fprintf(&b, "Symbol: %s\nTimeframe: %s (%s)\nDirection: %s\n", c.Symbol, c.Timeframe, c.TradeType, c.Direction)
	fmt.Fprintf(&b, "Entry: %g  Stop: %g  Target: %g  Reward:risk: %.2f\n", c.EntryPrice, c.StopLoss, c.TakeProfit, c.RewardRisk)
	fmt.Fprintf(&b, "Confidence: %d\n", c.Confidence)
	fmt.Fprintf(&b, "Bias: %s  Trap: %s  Divergence: %s\n", c.Analysis.Bias, c.Analysis.Trap.Direction, c.Analysis.Divergence)
	fmt.Fprintf(&b, "Factors: %s\n", c.Reasoning)
	return b.String()
}
