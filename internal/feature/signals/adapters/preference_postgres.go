package adapters

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/usecase"
)

type preferencePostgres struct {
	db *gorm.DB
}

var _ usecase.PreferenceStore = (*preferencePostgres)(nil)

func NewPreferenceRepository(db *gorm.DB) *preferencePostgres {
	return &preferencePostgres{db: db}
}

// UserPreferenceModel stores list preferences as raw text so a malformed row
// degrades to "no preference" instead of failing the whole read.
type UserPreferenceModel struct {
	UserID              string `gorm:"primaryKey;size:64"`
	TradingStyle        string `gorm:"size:16"`
	PreferredPairs      string `gorm:"type:text"`
	PreferredTimeframes string `gorm:"type:text"`
}

func (UserPreferenceModel) TableName() string {
	return "user_preferences"
}

func (r *preferencePostgres) ListAll(ctx context.Context) ([]entity.UserPreference, error) {
	var rows []UserPreferenceModel
	if err := r.db.WithContext(ctx).Order("user_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.UserPreference, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

func (m UserPreferenceModel) toEntity() entity.UserPreference {
	p := entity.UserPreference{
		UserID:         m.UserID,
		TradingStyle:   entity.TradeType(strings.ToLower(strings.TrimSpace(m.TradingStyle))),
		PreferredPairs: parseList(m.PreferredPairs),
	}
	for _, tf := range parseList(m.PreferredTimeframes) {
		p.PreferredTimeframes = append(p.PreferredTimeframes, entity.Timeframe(tf))
	}
	return p
}

// parseList accepts a JSON array or a comma-separated list. Anything else
// yields nil.
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}

	var items []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil
		}
	} else {
		items = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
