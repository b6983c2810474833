package messages

import (
	"context"
	"strings"
	"testing"

	"restobot/internal/models"
)

type fakeMsgRepo struct {
	msgs []models.RestaurantMessage
}

func (f *fakeMsgRepo) FindActive(_ context.Context, restaurantID uint, msgType, language string) (*models.RestaurantMessage, error) {
	for i, m := range f.msgs {
		if m.RestaurantID == restaurantID && m.Type == msgType && m.Language == language && m.Active {
			return &f.msgs[i], nil
		}
	}
	return nil, nil
}

func (f *fakeMsgRepo) FindActiveAnyLanguage(_ context.Context, restaurantID uint, msgType string) (*models.RestaurantMessage, error) {
	for i, m := range f.msgs {
		if m.RestaurantID == restaurantID && m.Type == msgType && m.Active {
			return &f.msgs[i], nil
		}
	}
	return nil, nil
}

type fakeLegacyRepo struct {
	tmpls []models.LegacyTemplate
}

func (f *fakeLegacyRepo) FindApproved(_ context.Context, restaurantID uint, language string) ([]models.LegacyTemplate, error) {
	var out []models.LegacyTemplate
	for _, t := range f.tmpls {
		if t.RestaurantID == restaurantID && t.Language == language && t.Status == "APPROVED" {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeLegacyRepo) FindApprovedAnyLanguage(_ context.Context, restaurantID uint) ([]models.LegacyTemplate, error) {
	var out []models.LegacyTemplate
	for _, t := range f.tmpls {
		if t.RestaurantID == restaurantID && t.Status == "APPROVED" {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeRestaurants struct {
	defaultLang string
}

func (f *fakeRestaurants) DefaultLanguage(_ context.Context, _ uint) (string, error) {
	return f.defaultLang, nil
}

func newTestResolver(msgs []models.RestaurantMessage, tmpls []models.LegacyTemplate, defaultLang string) *Resolver {
	return NewResolver(&fakeMsgRepo{msgs: msgs}, &fakeLegacyRepo{tmpls: tmpls}, &fakeRestaurants{defaultLang: defaultLang})
}

func TestResolveLanguagePreference(t *testing.T) {
	r := newTestResolver([]models.RestaurantMessage{
		{RestaurantID: 1, Type: "menu", Language: "it", Body: "il menu", Active: true},
		{RestaurantID: 1, Type: "menu", Language: "es", Body: "el menú", Active: true},
	}, nil, "it")

	c, err := r.Resolve(context.Background(), 1, "menu", "es")
	if err != nil {
		t.Fatal(err)
	}
	if c.Body != "el menú" {
		t.Fatalf("requested es must win over default-language it, got %q", c.Body)
	}
}

func TestResolveDefaultLanguageFallback(t *testing.T) {
	r := newTestResolver([]models.RestaurantMessage{
		{RestaurantID: 1, Type: "menu", Language: "it", Body: "il menu", Active: true},
	}, nil, "it")

	c, err := r.Resolve(context.Background(), 1, "menu", "de")
	if err != nil {
		t.Fatal(err)
	}
	if c.Body != "il menu" || c.Source != "current" {
		t.Fatalf("expected restaurant-default it content, got %+v", c)
	}
}

func TestResolveAnyLanguageFallback(t *testing.T) {
	r := newTestResolver([]models.RestaurantMessage{
		{RestaurantID: 1, Type: "menu", Language: "pt", Body: "o menu", Active: true},
	}, nil, "it")

	c, err := r.Resolve(context.Background(), 1, "menu", "de")
	if err != nil {
		t.Fatal(err)
	}
	if c.Body != "o menu" {
		t.Fatalf("expected any-language content, got %+v", c)
	}
}

func TestResolveLegacyTier(t *testing.T) {
	r := newTestResolver(nil, []models.LegacyTemplate{
		{RestaurantID: 1, Name: "weekly_menu", Language: "it", Status: "APPROVED", Body: "legacy menu"},
		{RestaurantID: 1, Name: "review_ask", Language: "it", Status: "APPROVED", Body: "legacy review"},
		{RestaurantID: 1, Name: "pending_menu", Language: "it", Status: "PENDING", Body: "not approved"},
	}, "it")
	ctx := context.Background()

	c, err := r.Resolve(ctx, 1, "menu", "it")
	if err != nil {
		t.Fatal(err)
	}
	if c.Body != "legacy menu" || c.Source != "legacy" {
		t.Fatalf("expected legacy menu template, got %+v", c)
	}

	c, err = r.Resolve(ctx, 1, "review", "it")
	if err != nil {
		t.Fatal(err)
	}
	if c.Body != "legacy review" {
		t.Fatalf("expected review-like template, got %+v", c)
	}
}

func TestResolveInactiveSkipped(t *testing.T) {
	r := newTestResolver([]models.RestaurantMessage{
		{RestaurantID: 1, Type: "menu", Language: "it", Body: "deactivated", Active: false},
	}, nil, "it")

	c, err := r.Resolve(context.Background(), 1, "menu", "it")
	if err != nil {
		t.Fatal(err)
	}
	if c.Source != "default" {
		t.Fatalf("inactive content must not resolve, got %+v", c)
	}
}

func TestResolveTotality(t *testing.T) {
	// Nothing configured at all: Tier 3 must still answer.
	r := newTestResolver(nil, nil, "it")

	for _, msgType := range []string{"menu", "review"} {
		c, err := r.Resolve(context.Background(), 42, msgType, "it")
		if err != nil {
			t.Fatal(err)
		}
		if c == nil || c.Body == "" {
			t.Fatalf("cascade must never return empty content for %s", msgType)
		}
		if c.Source != "default" {
			t.Fatalf("expected default tier, got %q", c.Source)
		}
		if !strings.Contains(c.Body, "{{customer_name}}") {
			t.Errorf("default body should greet the customer: %q", c.Body)
		}
	}
}

func TestMediaAndCTAMutuallyExclusive(t *testing.T) {
	r := newTestResolver([]models.RestaurantMessage{
		{RestaurantID: 1, Type: "menu", Language: "it", Body: "menu", Active: true,
			MediaURL: "https://cdn.example/menu.pdf", CTAURL: "https://book.example", CTAText: "Prenota"},
	}, nil, "it")

	c, err := r.Resolve(context.Background(), 1, "menu", "it")
	if err != nil {
		t.Fatal(err)
	}
	if c.MediaURL == "" {
		t.Fatal("media slot should survive")
	}
	if c.CTAURL != "" {
		t.Fatal("CTA URL slot must be cleared when media is present")
	}
}
