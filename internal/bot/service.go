package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restobot/internal/models"
)

var (
	ErrDuplicateTrigger = errors.New("trigger phrase already in use by an active bot")
	ErrNotFound         = errors.New("bot config not found")
)

// JobCanceller lets the service cancel pending follow-ups when a bot is
// deactivated, without importing the scheduler.
type JobCanceller interface {
	CancelPendingForRestaurant(ctx context.Context, restaurantID uint) (int64, error)
}

// Service owns BotConfig writes and enforces trigger uniqueness among
// active configs.
type Service struct {
	repo ConfigRepository
	jobs JobCanceller
}

func NewService(repo ConfigRepository, jobs JobCanceller) *Service {
	return &Service{repo: repo, jobs: jobs}
}

// Save validates and persists a config. Trigger phrases are compared
// case-insensitively against every other active config.
func (s *Service) Save(ctx context.Context, cfg *models.BotConfig) error {
	cfg.TriggerPhrase = strings.TrimSpace(cfg.TriggerPhrase)
	if cfg.TriggerPhrase == "" {
		return errors.New("trigger phrase is required")
	}

	if cfg.Active {
		existing, err := s.repo.FindActiveByTrigger(ctx, strings.ToLower(cfg.TriggerPhrase))
		if err != nil {
			return fmt.Errorf("checking trigger uniqueness: %w", err)
		}
		if existing != nil && existing.ID != cfg.ID {
			return ErrDuplicateTrigger
		}
	}

	return s.repo.Save(ctx, cfg)
}

// Deactivate soft-disables a bot and cancels its pending scheduled
// sends. Configs are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cfg == nil {
		return ErrNotFound
	}

	cfg.Active = false
	if err := s.repo.Save(ctx, cfg); err != nil {
		return err
	}

	if s.jobs != nil {
		if _, err := s.jobs.CancelPendingForRestaurant(ctx, cfg.RestaurantID); err != nil {
			return fmt.Errorf("cancelling pending jobs: %w", err)
		}
	}
	return nil
}
