package scheduler

import (
	"context"
	"errors"
	"time"

	"restobot/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormJobStore struct {
	db *gorm.DB
}

func NewGormJobStore(db *gorm.DB) *GormJobStore {
	return &GormJobStore{db: db}
}

func (s *GormJobStore) Create(ctx context.Context, job *models.ScheduledMessage) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *GormJobStore) Get(ctx context.Context, id uuid.UUID) (*models.ScheduledMessage, error) {
	var job models.ScheduledMessage
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *GormJobStore) Update(ctx context.Context, job *models.ScheduledMessage) error {
	return s.db.WithContext(ctx).Save(job).Error
}

func (s *GormJobStore) FindDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error) {
	var jobs []models.ScheduledMessage
	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", models.JobStatusPending, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// ClaimDue selects due candidates and flips each to processing with a
// per-row conditional update, so two concurrent pollers can never both
// obtain the same job. Claims whose lease has lapsed (crashed worker)
// are reclaimable.
func (s *GormJobStore) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]models.ScheduledMessage, error) {
	var candidates []models.ScheduledMessage
	err := s.db.WithContext(ctx).
		Where("scheduled_for <= ? AND (status = ? OR (status = ? AND locked_until < ?))",
			now, models.JobStatusPending, models.JobStatusProcessing, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	lockedUntil := now.Add(lease)
	claimed := make([]models.ScheduledMessage, 0, len(candidates))
	for i := range candidates {
		res := s.db.WithContext(ctx).Model(&models.ScheduledMessage{}).
			Where("id = ? AND (status = ? OR (status = ? AND locked_until < ?))",
				candidates[i].ID, models.JobStatusPending, models.JobStatusProcessing, now).
			Updates(map[string]interface{}{
				"status":       models.JobStatusProcessing,
				"locked_until": lockedUntil,
			})
		if res.Error != nil {
			return claimed, res.Error
		}
		if res.RowsAffected == 0 {
			continue // lost the race to another poller
		}
		candidates[i].Status = models.JobStatusProcessing
		candidates[i].LockedUntil = &lockedUntil
		claimed = append(claimed, candidates[i])
	}
	return claimed, nil
}

func (s *GormJobStore) CancelPendingForCampaign(ctx context.Context, campaignID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.ScheduledMessage{}).
		Where("campaign_id = ? AND status = ?", campaignID, models.JobStatusPending).
		Update("status", models.JobStatusCancelled)
	return res.RowsAffected, res.Error
}

func (s *GormJobStore) CancelPendingForRestaurant(ctx context.Context, restaurantID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.ScheduledMessage{}).
		Where("restaurant_id = ? AND status = ?", restaurantID, models.JobStatusPending).
		Update("status", models.JobStatusCancelled)
	return res.RowsAffected, res.Error
}

// GormConfigLookup resolves the active bot config of a restaurant for
// the messaging-hours gate.
type GormConfigLookup struct {
	db *gorm.DB
}

func NewGormConfigLookup(db *gorm.DB) *GormConfigLookup {
	return &GormConfigLookup{db: db}
}

func (l *GormConfigLookup) ForRestaurant(ctx context.Context, restaurantID uint) (*models.BotConfig, error) {
	var cfg models.BotConfig
	err := l.db.WithContext(ctx).
		Where("restaurant_id = ? AND active = ?", restaurantID, true).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

type GormRestaurantInfo struct {
	db *gorm.DB
}

func NewGormRestaurantInfo(db *gorm.DB) *GormRestaurantInfo {
	return &GormRestaurantInfo{db: db}
}

func (l *GormRestaurantInfo) NameOf(ctx context.Context, restaurantID uint) (string, error) {
	var restaurant models.Restaurant
	err := l.db.WithContext(ctx).First(&restaurant, restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return restaurant.Name, nil
}
