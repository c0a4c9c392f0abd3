package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
	"signal_backend/internal/platform/metrics"
	"signal_backend/internal/shared/ratelimiter"
)

// RunResult is the outcome of one bot run.
type RunResult struct {
	Count   int             `json:"count"`
	Signals []entity.Signal `json:"signals"`
}

// EngineUsecase implements the engine operations over market data, the
// signal store and the user preference store.
type EngineUsecase struct {
	selector   *Selector
	signals    SignalStore
	prefs      PreferenceStore
	dispatcher Dispatcher
	claimer    SymbolClaimer
	narrator   Narrator
	bots       BotRepository
	now        func() time.Time
}

// NewEngineUsecase returns an engine without a claimer, narrator or bot repository.
func NewEngineUsecase(
	market MarketRepository,
	signals SignalStore,
	prefs PreferenceStore,
	dispatcher Dispatcher,
	rateLimiter ratelimiter.RateLimiterInterface,
) *EngineUsecase {
	return &EngineUsecase{
		selector:   NewSelector(market, rateLimiter),
		signals:    signals,
		prefs:      prefs,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// WithClaimer enables per-symbol claims during bot runs.
func (e *EngineUsecase) WithClaimer(c SymbolClaimer) *EngineUsecase {
	e.claimer = c
	return e
}

// WithNarrator appends narrator output to candidate reasoning.
func (e *EngineUsecase) WithNarrator(n Narrator) *EngineUsecase {
	e.narrator = n
	return e
}

// WithBots enables bot lookup by ID.
func (e *EngineUsecase) WithBots(b BotRepository) *EngineUsecase {
	e.bots = b
	return e
}

// WithClock replaces the wall clock.
func (e *EngineUsecase) WithClock(now func() time.Time) *EngineUsecase {
	e.now = now
	return e
}

// AnalyzeSingle returns the best candidate for symbol across timeframes, or
// nil when no timeframe yields a setup. Nothing is persisted.
func (e *EngineUsecase) AnalyzeSingle(ctx context.Context, symbol string, timeframes []entity.Timeframe) (*entity.Candidate, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if len(timeframes) == 0 {
		timeframes = entity.DefaultTimeframes
	}

	c, _ := e.selector.Select(ctx, symbol, timeframes)
	if c == nil {
		return nil, nil
	}
	e.narrate(ctx, c)
	return c, nil
}

// FindBot looks up a stored bot definition.
func (e *EngineUsecase) FindBot(ctx context.Context, id string) (*entity.BotConfig, error) {
	if e.bots == nil {
		return nil, ErrBotNotFound
	}
	return e.bots.FindByID(ctx, id)
}

// RunBot analyzes every pair of the bot once, persisting at most one signal
// per symbol. Symbols with an unresolved bot signal from the last
// PendingLookback are skipped. Per-symbol failures are logged and skipped.
func (e *EngineUsecase) RunBot(ctx context.Context, bot entity.BotConfig) (*RunResult, error) {
	actor := strings.TrimSpace(bot.ActorID)
	if actor == "" {
		return nil, ErrMissingActor
	}
	timeframes := bot.Timeframes
	if len(timeframes) == 0 {
		timeframes = entity.DefaultTimeframes
	}

	now := e.now()
	pending, err := e.signals.FindPending(ctx, now.Add(-PendingLookback))
	if err != nil {
		return nil, fmt.Errorf("load pending signals: %w", err)
	}

	run := &botRun{
		bot:        bot,
		actor:      actor,
		timeframes: timeframes,
		pending:    NewPendingIndex(pending, now),
		processed:  make(map[string]struct{}),
	}

	result := &RunResult{Signals: []entity.Signal{}}
	for _, symbol := range bot.Pairs {
		s, ok := e.runSymbol(ctx, run, symbol)
		if !ok {
			continue
		}
		result.Signals = append(result.Signals, *s)
	}
	result.Count = len(result.Signals)

	slog.Info("bot run finished", "bot", bot.ID, "actor", actor, "pairs", len(bot.Pairs), "signals", result.Count)
	return result, nil
}

// botRun carries the per-invocation state of RunBot.
type botRun struct {
	bot        entity.BotConfig
	actor      string
	timeframes []entity.Timeframe
	pending    PendingIndex
	processed  map[string]struct{}
	prefs      []entity.UserPreference
	prefsDone  bool
}

func (e *EngineUsecase) runSymbol(ctx context.Context, run *botRun, symbol string) (*entity.Signal, bool) {
	symbol = strings.TrimSpace(symbol)
	key := instrument.Normalize(symbol)
	if key == "" {
		return nil, false
	}
	if _, done := run.processed[key]; done {
		metrics.SymbolSkipsTotal.WithLabelValues(metrics.SkipDuplicate).Inc()
		return nil, false
	}
	run.processed[key] = struct{}{}

	if run.pending.Blocked(symbol) {
		metrics.SymbolSkipsTotal.WithLabelValues(metrics.SkipPending).Inc()
		slog.Info("skipping symbol with pending signal", "symbol", symbol, "bot", run.bot.ID)
		return nil, false
	}

	held, ok := e.claim(ctx, symbol)
	if !ok {
		metrics.SymbolSkipsTotal.WithLabelValues(metrics.SkipClaimed).Inc()
		slog.Info("skipping symbol claimed by another run", "symbol", symbol, "bot", run.bot.ID)
		return nil, false
	}
	if held {
		defer e.release(ctx, symbol)
		if e.pendingSince(ctx, symbol) {
			metrics.SymbolSkipsTotal.WithLabelValues(metrics.SkipPending).Inc()
			slog.Info("skipping symbol persisted by another run", "symbol", symbol, "bot", run.bot.ID)
			return nil, false
		}
	}

	return e.emit(ctx, run, symbol)
}

// pendingSince re-reads the store while the claim on symbol is held, so a
// signal persisted by a concurrent run after the index was built is seen.
// A read failure counts as blocked.
func (e *EngineUsecase) pendingSince(ctx context.Context, symbol string) bool {
	now := e.now()
	records, err := e.signals.FindPending(ctx, now.Add(-PendingLookback))
	if err != nil {
		slog.Warn("failed to re-check pending signals", "symbol", symbol, "error", err)
		return true
	}
	return NewPendingIndex(records, now).Blocked(symbol)
}

func (e *EngineUsecase) emit(ctx context.Context, run *botRun, symbol string) (*entity.Signal, bool) {
	c, tf := e.selector.Select(ctx, symbol, run.timeframes)
	if c == nil {
		metrics.SymbolSkipsTotal.WithLabelValues(metrics.SkipNoSetup).Inc()
		return nil, false
	}
	e.narrate(ctx, c)

	matched := MatchAudience(*c, e.preferences(ctx, run))
	s := e.newSignal(*c, run, matched)

	if err := e.signals.Create(ctx, s); err != nil {
		metrics.PersistErrorsTotal.Inc()
		slog.Error("failed to persist signal", "symbol", symbol, "timeframe", tf, "error", err)
		return nil, false
	}
	metrics.CandidatesTotal.WithLabelValues(s.Symbol, string(s.Timeframe), string(s.Direction)).Inc()
	slog.Info("signal persisted", "id", s.ID, "symbol", s.Symbol, "timeframe", tf,
		"direction", s.Direction, "confidence", s.Confidence, "matched", len(matched))

	if run.bot.AutoBroadcast {
		e.broadcast(ctx, s)
	}
	return s, true
}

func (e *EngineUsecase) newSignal(c entity.Candidate, run *botRun, matched []string) *entity.Signal {
	return &entity.Signal{
		ID:             uuid.NewString(),
		Symbol:         c.Symbol,
		Direction:      c.Direction,
		EntryPrice:     c.EntryPrice,
		StopLoss:       c.StopLoss,
		TakeProfit:     c.TakeProfit,
		Confidence:     c.Confidence,
		Reasoning:      c.Reasoning,
		Tier:           c.Timeframe.Tier(),
		IsPublic:       run.bot.AutoBroadcast,
		TradeType:      c.TradeType,
		Timeframe:      c.Timeframe,
		RewardRisk:     c.RewardRisk,
		Analysis:       c.Analysis,
		GeneratedBy:    entity.GeneratedByBot,
		Outcome:        entity.OutcomePending,
		MatchedUserIDs: matched,
		CreatedBy:      run.actor,
		CreatedAt:      e.now(),
	}
}

// broadcast dispatches s to its matched users. Failures are logged only.
func (e *EngineUsecase) broadcast(ctx context.Context, s *entity.Signal) {
	if err := e.dispatcher.Dispatch(ctx, *s, s.MatchedUserIDs); err != nil {
		slog.Warn("failed to dispatch signal", "id", s.ID, "symbol", s.Symbol, "error", err)
		return
	}
	if err := e.signals.MarkBroadcast(ctx, s.ID, s.MatchedUserIDs); err != nil {
		slog.Warn("failed to mark signal broadcast", "id", s.ID, "error", err)
		return
	}
	s.IsBroadcast = true
}

// preferences loads the preference set once per run. A load failure leaves
// the audience empty.
func (e *EngineUsecase) preferences(ctx context.Context, run *botRun) []entity.UserPreference {
	if run.prefsDone {
		return run.prefs
	}
	run.prefsDone = true

	prefs, err := e.prefs.ListAll(ctx)
	if err != nil {
		slog.Error("failed to load user preferences", "error", err)
		return nil
	}
	run.prefs = prefs
	return prefs
}

// claim reserves symbol until release or ClaimTTL, whichever comes first.
// ok reports whether the symbol may be processed and held whether a claim
// was actually taken. Without a claimer, or when the claim store is
// unavailable, the symbol is processed unclaimed.
func (e *EngineUsecase) claim(ctx context.Context, symbol string) (held, ok bool) {
	if e.claimer == nil {
		return false, true
	}
	granted, err := e.claimer.Claim(ctx, instrument.Normalize(symbol), ClaimTTL)
	if err != nil {
		slog.Warn("symbol claim unavailable, continuing unclaimed", "symbol", symbol, "error", err)
		return false, true
	}
	return granted, granted
}

func (e *EngineUsecase) release(ctx context.Context, symbol string) {
	if e.claimer == nil {
		return
	}
	if err := e.claimer.Release(ctx, instrument.Normalize(symbol)); err != nil {
		slog.Warn("failed to release symbol claim", "symbol", symbol, "error", err)
	}
}

func (e *EngineUsecase) narrate(ctx context.Context, c *entity.Candidate) {
	if e.narrator == nil {
		return
	}
	text, err := e.narrator.Narrate(ctx, *c)
	if err != nil {
		slog.Warn("narration failed", "symbol", c.Symbol, "error", err)
		return
	}
	if text = strings.TrimSpace(text); text != "" {
		c.Reasoning += "\n\n" + text
	}
}

// SendSignalToUsers dispatches a stored signal to every user whose
// preferences match it and returns the number of users notified.
func (e *EngineUsecase) SendSignalToUsers(ctx context.Context, id string) (int, error) {
	s, err := e.signals.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}

	prefs, err := e.prefs.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load user preferences: %w", err)
	}
	matched := MatchAudience(s.Candidate(), prefs)

	if len(matched) > 0 {
		if err := e.dispatcher.Dispatch(ctx, *s, matched); err != nil {
			return 0, fmt.Errorf("dispatch signal %s: %w", s.ID, err)
		}
	}
	if err := e.signals.MarkBroadcast(ctx, s.ID, matched); err != nil {
		slog.Warn("failed to mark signal broadcast", "id", s.ID, "error", err)
	}

	slog.Info("signal sent to users", "id", s.ID, "symbol", s.Symbol, "notified", len(matched))
	return len(matched), nil
}
