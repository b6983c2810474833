// Package scheduler owns the durable deferred-delivery jobs: creation,
// claim, dispatch, retry and cancellation.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restobot/internal/delivery"
	"restobot/internal/gateway"
	"restobot/internal/lang"
	"restobot/internal/messages"
	"restobot/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound       = errors.New("job not found")
	ErrNotCancellable = errors.New("job is no longer pending")
)

// claimLease bounds how long a claimed job may sit in processing
// before another poller may reclaim it (crash recovery).
const claimLease = 5 * time.Minute

// retryBackoff spaces redelivery attempts of a failed job.
const retryBackoff = 5 * time.Minute

// JobStore is the durable job table. ClaimDue must be atomic per job:
// of N concurrent callers, exactly one obtains any given due job.
type JobStore interface {
	Create(ctx context.Context, job *models.ScheduledMessage) error
	Get(ctx context.Context, id uuid.UUID) (*models.ScheduledMessage, error)
	Update(ctx context.Context, job *models.ScheduledMessage) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error)
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]models.ScheduledMessage, error)
	CancelPendingForCampaign(ctx context.Context, campaignID uint) (int64, error)
	CancelPendingForRestaurant(ctx context.Context, restaurantID uint) (int64, error)
}

// ConfigLookup supplies the messaging-hours window of a restaurant.
type ConfigLookup interface {
	ForRestaurant(ctx context.Context, restaurantID uint) (*models.BotConfig, error)
}

// RestaurantInfo supplies the restaurant display name for variable
// substitution.
type RestaurantInfo interface {
	NameOf(ctx context.Context, restaurantID uint) (string, error)
}

type Service struct {
	store       JobStore
	dispatcher  *delivery.Dispatcher
	resolver    *messages.Resolver
	configs     ConfigLookup
	restaurants RestaurantInfo
	now         func() time.Time
}

func NewService(store JobStore, dispatcher *delivery.Dispatcher, resolver *messages.Resolver, configs ConfigLookup, restaurants RestaurantInfo) *Service {
	return &Service{
		store:       store,
		dispatcher:  dispatcher,
		resolver:    resolver,
		configs:     configs,
		restaurants: restaurants,
		now:         time.Now,
	}
}

// ScheduleReview enqueues the review follow-up after a menu delivery.
// The delay counts from now (the moment of menu delivery, not trigger
// receipt) and the resolved body is copied in, so later content edits
// do not change the job.
func (s *Service) ScheduleReview(ctx context.Context, cfg *models.BotConfig, contact *models.WhatsAppContact, interactionID uint, content *messages.Content) (*models.ScheduledMessage, error) {
	job := &models.ScheduledMessage{
		RestaurantID:  cfg.RestaurantID,
		InteractionID: &interactionID,
		Phone:         contact.Phone,
		CustomerName:  contact.Name,
		Type:          models.MessageTypeReview,
		Body:          content.Body,
		MediaURL:      content.MediaURL,
		ScheduledFor:  s.now().Add(time.Duration(cfg.ReviewDelayMinutes) * time.Minute),
		Status:        models.JobStatusPending,
		MaxRetries:    3,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("persisting review job: %w", err)
	}
	return job, nil
}

// ScheduleCampaign enqueues one job per contact. Campaign sends ride
// the gateway's own send-later feature, so the requested time is
// clamped into the provider's scheduling window.
func (s *Service) ScheduleCampaign(ctx context.Context, campaign *models.Campaign, dests []models.WhatsAppContact) (int, error) {
	when := gateway.ClampToWindow(s.now(), campaign.ScheduledFor)

	created := 0
	for i := range dests {
		job := &models.ScheduledMessage{
			RestaurantID: campaign.RestaurantID,
			CampaignID:   &campaign.ID,
			Phone:        dests[i].Phone,
			CustomerName: dests[i].Name,
			Type:         models.MessageTypeCampaign,
			Body:         campaign.Body,
			MediaURL:     campaign.MediaURL,
			ScheduledFor: when,
			Status:       models.JobStatusPending,
			MaxRetries:   3,
		}
		if err := s.store.Create(ctx, job); err != nil {
			return created, fmt.Errorf("persisting campaign job: %w", err)
		}
		created++
	}
	return created, nil
}

// FindDue is the operational query surface; the poller uses ClaimDue.
func (s *Service) FindDue(ctx context.Context, limit int) ([]models.ScheduledMessage, error) {
	return s.store.FindDue(ctx, s.now(), limit)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ScheduledMessage, error) {
	return s.store.Get(ctx, id)
}

// Cancel transitions a pending job to cancelled. Any other state is
// terminal for cancellation purposes.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusPending {
		return ErrNotCancellable
	}
	job.Status = models.JobStatusCancelled
	return s.store.Update(ctx, job)
}

func (s *Service) CancelForCampaign(ctx context.Context, campaignID uint) (int64, error) {
	return s.store.CancelPendingForCampaign(ctx, campaignID)
}

func (s *Service) CancelPendingForRestaurant(ctx context.Context, restaurantID uint) (int64, error) {
	return s.store.CancelPendingForRestaurant(ctx, restaurantID)
}

// ClaimBatch atomically claims up to limit due jobs for this instance.
func (s *Service) ClaimBatch(ctx context.Context, limit int) ([]models.ScheduledMessage, error) {
	return s.store.ClaimDue(ctx, s.now(), limit, claimLease)
}

// Dispatch sends one claimed job. It consults the messaging-hours gate
// first, resolves content for legacy jobs that carry no embedded body,
// and applies the bounded retry policy: a failed attempt re-enters
// pending with a backoff until max_retries is reached, then becomes
// terminally failed.
func (s *Service) Dispatch(ctx context.Context, job *models.ScheduledMessage) error {
	now := s.now()

	cfg, err := s.configs.ForRestaurant(ctx, job.RestaurantID)
	if err != nil {
		return fmt.Errorf("loading bot config: %w", err)
	}
	if next := dispatchTime(cfg, now); next.After(now) {
		job.Status = models.JobStatusPending
		job.ScheduledFor = next
		job.LockedUntil = nil
		log.Info().
			Str("job_id", job.ID.String()).
			Time("deferred_to", next).
			Msg("outside messaging hours, deferring job")
		return s.store.Update(ctx, job)
	}

	content := &messages.Content{Body: job.Body, MediaURL: job.MediaURL}
	if content.Body == "" {
		// Legacy jobs reference a template instead of carrying a body;
		// re-resolve through the cascade at dispatch time.
		resolved, err := s.resolver.Resolve(ctx, job.RestaurantID, job.Type, lang.FromPhone(job.Phone))
		if err != nil {
			return s.recordFailure(ctx, job, fmt.Errorf("resolving content: %w", err))
		}
		content = resolved
	}

	restaurantName, err := s.restaurants.NameOf(ctx, job.RestaurantID)
	if err != nil {
		return fmt.Errorf("loading restaurant: %w", err)
	}

	result := s.dispatcher.Deliver(ctx, job.RestaurantID, job.Phone, content, delivery.Variables{
		CustomerName:   job.CustomerName,
		RestaurantName: restaurantName,
	})
	if !result.Success {
		return s.recordFailure(ctx, job, errors.New(result.Error))
	}

	sentAt := s.now()
	job.Status = models.JobStatusSent
	job.SentAt = &sentAt
	job.DeliveryID = result.DeliveryID
	job.LockedUntil = nil
	job.ErrorMessage = ""
	return s.store.Update(ctx, job)
}

func (s *Service) recordFailure(ctx context.Context, job *models.ScheduledMessage, cause error) error {
	job.RetryCount++
	job.ErrorMessage = cause.Error()
	job.LockedUntil = nil

	if job.RetryCount < job.MaxRetries {
		job.Status = models.JobStatusPending
		job.ScheduledFor = s.now().Add(time.Duration(job.RetryCount) * retryBackoff)
		log.Warn().
			Str("job_id", job.ID.String()).
			Int("retry", job.RetryCount).
			Err(cause).
			Msg("dispatch failed, will retry")
	} else {
		job.Status = models.JobStatusFailed
		log.Error().
			Str("job_id", job.ID.String()).
			Int("retries", job.RetryCount).
			Err(cause).
			Msg("dispatch failed, retries exhausted")
	}
	return s.store.Update(ctx, job)
}
