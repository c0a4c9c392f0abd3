package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/usecase"
)

type signalPostgres struct {
	db *gorm.DB
}

var _ usecase.SignalStore = (*signalPostgres)(nil)

func NewSignalRepository(db *gorm.DB) *signalPostgres {
	return &signalPostgres{db: db}
}

type SignalModel struct {
	ID         string  `gorm:"primaryKey;size:36"`
	Symbol     string  `gorm:"size:32;not null;index:signal_pending_lookup,priority:2"`
	Direction  string  `gorm:"size:4;not null"`
	EntryPrice float64 `gorm:"not null"`
	StopLoss   float64 `gorm:"not null"`
	TakeProfit float64 `gorm:"not null"`
	Confidence int     `gorm:"not null"`
	Reasoning  string  `gorm:"type:text"`
	Tier       string  `gorm:"size:16"`
	IsPublic   bool    `gorm:"not null;default:false"`
	TradeType  string  `gorm:"size:16"`
	Timeframe  string  `gorm:"size:8"`
	RewardRisk float64

	Analysis       entity.Analysis `gorm:"type:text;serializer:json"`
	MatchedUserIDs []string        `gorm:"type:text;serializer:json"`

	GeneratedBy string    `gorm:"size:16;not null;index:signal_pending_lookup,priority:1"`
	Outcome     string    `gorm:"size:16;not null;default:pending"`
	IsBroadcast bool      `gorm:"not null;default:false"`
	CreatedBy   string    `gorm:"size:64;not null"`
	CreatedAt   time.Time `gorm:"not null;index:signal_pending_lookup,priority:3"`
}

func (SignalModel) TableName() string {
	return "signals"
}

func toSignalModel(s entity.Signal) SignalModel {
	return SignalModel{
		ID:             s.ID,
		Symbol:         s.Symbol,
		Direction:      string(s.Direction),
		EntryPrice:     s.EntryPrice,
		StopLoss:       s.StopLoss,
		TakeProfit:     s.TakeProfit,
		Confidence:     s.Confidence,
		Reasoning:      s.Reasoning,
		Tier:           s.Tier,
		IsPublic:       s.IsPublic,
		TradeType:      string(s.TradeType),
		Timeframe:      string(s.Timeframe),
		RewardRisk:     s.RewardRisk,
		Analysis:       s.Analysis,
		MatchedUserIDs: s.MatchedUserIDs,
		GeneratedBy:    s.GeneratedBy,
		Outcome:        s.Outcome,
		IsBroadcast:    s.IsBroadcast,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
	}
}

func (m SignalModel) toEntity() entity.Signal {
	return entity.Signal{
		ID:             m.ID,
		Symbol:         m.Symbol,
		Direction:      entity.Direction(m.Direction),
		EntryPrice:     m.EntryPrice,
		StopLoss:       m.StopLoss,
		TakeProfit:     m.TakeProfit,
		Confidence:     m.Confidence,
		Reasoning:      m.Reasoning,
		Tier:           m.Tier,
		IsPublic:       m.IsPublic,
		TradeType:      entity.TradeType(m.TradeType),
		Timeframe:      entity.Timeframe(m.Timeframe),
		RewardRisk:     m.RewardRisk,
		Analysis:       m.Analysis,
		GeneratedBy:    m.GeneratedBy,
		Outcome:        m.Outcome,
		IsBroadcast:    m.IsBroadcast,
		MatchedUserIDs: m.MatchedUserIDs,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func (r *signalPostgres) Create(ctx context.Context, s *entity.Signal) error {
	m := toSignalModel(*s)
	if m.MatchedUserIDs == nil {
		m.MatchedUserIDs = []string{}
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindPending returns unresolved bot signals created at or after since.
func (r *signalPostgres) FindPending(ctx context.Context, since time.Time) ([]entity.PendingSignal, error) {
	var rows []SignalModel
	err := r.db.WithContext(ctx).
		Select("symbol", "direction", "created_at").
		Where("generated_by = ? AND outcome = ? AND created_at >= ?", entity.GeneratedByBot, entity.OutcomePending, since).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.PendingSignal, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.PendingSignal{
			Symbol:    m.Symbol,
			Direction: entity.Direction(m.Direction),
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (r *signalPostgres) FindByID(ctx context.Context, id string) (*entity.Signal, error) {
	var m SignalModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSignalNotFound
		}
		return nil, err
	}
	s := m.toEntity()
	return &s, nil
}

// MarkBroadcast flags the signal as sent and records who it was sent to.
func (r *signalPostgres) MarkBroadcast(ctx context.Context, id string, userIDs []string) error {
	if userIDs == nil {
		userIDs = []string{}
	}
	matched, err := json.Marshal(userIDs)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&SignalModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_broadcast": true, "matched_user_ids": string(matched)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrSignalNotFound
	}
	return nil
}
