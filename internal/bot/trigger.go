// Package bot matches inbound text against per-restaurant trigger
// configurations and manages their lifecycle.
package bot

import (
	"context"
	"strings"

	"restobot/internal/models"
)

// ConfigRepository abstracts the BotConfig store.
type ConfigRepository interface {
	ListActive(ctx context.Context) ([]models.BotConfig, error)
	FindActiveByTrigger(ctx context.Context, phrase string) (*models.BotConfig, error)
	Save(ctx context.Context, cfg *models.BotConfig) error
	FindByID(ctx context.Context, id uint) (*models.BotConfig, error)
}

type Resolver struct {
	repo ConfigRepository
}

func NewResolver(repo ConfigRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve matches inbound text against active trigger phrases. The
// match is whole-string and case-insensitive: "show menu" does not
// match the trigger "menu". A miss is a normal outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, text string) (*models.BotConfig, bool, error) {
	phrase := strings.ToLower(strings.TrimSpace(text))
	if phrase == "" {
		return nil, false, nil
	}

	cfg, err := r.repo.FindActiveByTrigger(ctx, phrase)
	if err != nil {
		return nil, false, err
	}
	if cfg == nil {
		return nil, false, nil
	}
	return cfg, true, nil
}
