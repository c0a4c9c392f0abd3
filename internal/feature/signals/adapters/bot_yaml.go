package adapters

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/usecase"
)

// botsFile is the on-disk layout of a bot definitions file.
type botsFile struct {
	Bots []entity.BotConfig `yaml:"bots"`
}

// BotFileRepository serves bot definitions loaded once from a YAML file.
type BotFileRepository struct {
	bots []entity.BotConfig
}

var _ usecase.BotRepository = (*BotFileRepository)(nil)

// LoadBotFile reads and validates the bot definitions at path.
func LoadBotFile(path string) (*BotFileRepository, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bots file: %w", err)
	}
	return ParseBots(raw)
}

// ParseBots decodes bot definitions. IDs must be present and unique.
func ParseBots(raw []byte) (*BotFileRepository, error) {
	var f botsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode bots file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Bots))
	for i, b := range f.Bots {
		if b.ID == "" {
			return nil, fmt.Errorf("bot #%d has no id", i+1)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("duplicate bot id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return &BotFileRepository{bots: f.Bots}, nil
}

// All returns every bot in file order.
func (r *BotFileRepository) All() []entity.BotConfig {
	out := make([]entity.BotConfig, len(r.bots))
	copy(out, r.bots)
	return out
}

func (r *BotFileRepository) FindByID(ctx context.Context, id string) (*entity.BotConfig, error) {
	for _, b := range r.bots {
		if b.ID == id {
			bot := b
			return &bot, nil
		}
	}
	return nil, usecase.ErrBotNotFound
}
