package contacts

import (
	"context"
	"fmt"
	"testing"

	"restobot/internal/models"
)

type fakeRepo struct {
	byKey map[string]*models.WhatsAppContact
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byKey: map[string]*models.WhatsAppContact{}}
}

func (f *fakeRepo) key(restaurantID uint, hash string) string {
	return fmt.Sprintf("%d/%s", restaurantID, hash)
}

func (f *fakeRepo) FindByHash(_ context.Context, restaurantID uint, hash string) (*models.WhatsAppContact, error) {
	c, ok := f.byKey[f.key(restaurantID, hash)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, c *models.WhatsAppContact) error {
	f.byKey[f.key(c.RestaurantID, c.PhoneHash)] = c
	return nil
}

func (f *fakeRepo) Update(_ context.Context, c *models.WhatsAppContact) error {
	f.byKey[f.key(c.RestaurantID, c.PhoneHash)] = c
	return nil
}

func TestFindOrCreateIdempotentIdentity(t *testing.T) {
	repo := newFakeRepo()
	reg := NewRegistry(repo)
	ctx := context.Background()

	first, err := reg.FindOrCreate(ctx, 1, "+39 333 1234567", "Anna", "it")
	if err != nil {
		t.Fatal(err)
	}
	if !first.Consent {
		t.Error("new contact must default to consent=true")
	}
	if first.InteractionCount != 1 {
		t.Errorf("interaction count = %d, want 1", first.InteractionCount)
	}

	// Same number, different formatting and channel prefix.
	second, err := reg.FindOrCreate(ctx, 1, "whatsapp:393331234567", "Anna", "it")
	if err != nil {
		t.Fatal(err)
	}
	if second.PhoneHash != first.PhoneHash {
		t.Fatal("formatting variants must resolve to the same contact")
	}
	if second.InteractionCount != 2 {
		t.Errorf("interaction count = %d, want 2", second.InteractionCount)
	}
	if len(repo.byKey) != 1 {
		t.Fatalf("expected 1 stored contact, got %d", len(repo.byKey))
	}
}

func TestFindOrCreateNameOverwriteOnlyWhileGeneric(t *testing.T) {
	repo := newFakeRepo()
	reg := NewRegistry(repo)
	ctx := context.Background()

	c, err := reg.FindOrCreate(ctx, 1, "+393331234567", "", "it")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != DefaultName {
		t.Fatalf("empty name should store %q, got %q", DefaultName, c.Name)
	}

	c, _ = reg.FindOrCreate(ctx, 1, "+393331234567", "Anna", "it")
	if c.Name != "Anna" {
		t.Fatalf("generic name should be replaced, got %q", c.Name)
	}

	c, _ = reg.FindOrCreate(ctx, 1, "+393331234567", "Somebody Else", "it")
	if c.Name != "Anna" {
		t.Fatalf("real name must not be overwritten, got %q", c.Name)
	}
}

func TestFindOrCreateScopedByRestaurant(t *testing.T) {
	repo := newFakeRepo()
	reg := NewRegistry(repo)
	ctx := context.Background()

	a, _ := reg.FindOrCreate(ctx, 1, "+393331234567", "Anna", "it")
	b, _ := reg.FindOrCreate(ctx, 2, "+393331234567", "Anna", "it")
	if a.InteractionCount != 1 || b.InteractionCount != 1 {
		t.Error("restaurants must not share contact records")
	}
}
