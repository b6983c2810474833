package contacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"restobot/internal/lang"
	"restobot/internal/models"
)

var ErrNotFound = errors.New("contact not found")

// DefaultName is stored when the channel gives us no profile name. A
// stored name is only overwritten while it still holds this value.
const DefaultName = "WhatsApp Guest"

// Repository abstracts the contact store.
type Repository interface {
	FindByHash(ctx context.Context, restaurantID uint, hash string) (*models.WhatsAppContact, error)
	Create(ctx context.Context, c *models.WhatsAppContact) error
	Update(ctx context.Context, c *models.WhatsAppContact) error
}

type Registry struct {
	repo Repository
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// HashPhone returns the SHA-256 of the digits-only phone, the lookup
// key that collapses formatting variants of the same number.
func HashPhone(phone string) string {
	sum := sha256.Sum256([]byte(lang.Digits(phone)))
	return hex.EncodeToString(sum[:])
}

// FindOrCreate is the sole writer of interaction counts and consent
// provenance. Existing contacts get their counters bumped; new ones are
// created with consent opted in (tacit opt-in on first contact).
func (r *Registry) FindOrCreate(ctx context.Context, restaurantID uint, phone, name, language string) (*models.WhatsAppContact, error) {
	if name == "" {
		name = DefaultName
	}
	hash := HashPhone(phone)

	contact, err := r.repo.FindByHash(ctx, restaurantID, hash)
	if err == nil {
		contact.LastContactAt = time.Now()
		contact.InteractionCount++
		if contact.Name == DefaultName && name != DefaultName {
			contact.Name = name
		}
		if err := r.repo.Update(ctx, contact); err != nil {
			return nil, fmt.Errorf("updating contact: %w", err)
		}
		return contact, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("looking up contact: %w", err)
	}

	now := time.Now()
	contact = &models.WhatsAppContact{
		RestaurantID:      restaurantID,
		PhoneHash:         hash,
		Phone:             lang.Digits(phone),
		Name:              name,
		Language:          language,
		InteractionCount:  1,
		FirstContactAt:    now,
		LastContactAt:     now,
		Consent:           true,
		ConsentProvenance: "first_contact",
		Tags:              "[]",
	}
	if err := r.repo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}
	return contact, nil
}
