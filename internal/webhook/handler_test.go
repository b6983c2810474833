package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"restobot/internal/bot"
	"restobot/internal/contacts"
	"restobot/internal/delivery"
	"restobot/internal/messages"
	"restobot/internal/models"
	"restobot/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// --- fakes -----------------------------------------------------------

type fakeConfigRepo struct {
	configs []models.BotConfig
}

func (f *fakeConfigRepo) ListActive(_ context.Context) ([]models.BotConfig, error) {
	return f.configs, nil
}

func (f *fakeConfigRepo) FindActiveByTrigger(_ context.Context, phrase string) (*models.BotConfig, error) {
	for i, c := range f.configs {
		if c.Active && strings.ToLower(c.TriggerPhrase) == phrase {
			return &f.configs[i], nil
		}
	}
	return nil, nil
}

func (f *fakeConfigRepo) Save(_ context.Context, _ *models.BotConfig) error { return nil }

func (f *fakeConfigRepo) FindByID(_ context.Context, _ uint) (*models.BotConfig, error) {
	return nil, nil
}

type fakeContactRepo struct {
	byKey map[string]*models.WhatsAppContact
	next  uint
}

func (f *fakeContactRepo) FindByHash(_ context.Context, restaurantID uint, hash string) (*models.WhatsAppContact, error) {
	if c, ok := f.byKey[hash]; ok && c.RestaurantID == restaurantID {
		cp := *c
		return &cp, nil
	}
	return nil, contacts.ErrNotFound
}

func (f *fakeContactRepo) Create(_ context.Context, c *models.WhatsAppContact) error {
	f.next++
	c.ID = f.next
	f.byKey[c.PhoneHash] = c
	return nil
}

func (f *fakeContactRepo) Update(_ context.Context, c *models.WhatsAppContact) error {
	f.byKey[c.PhoneHash] = c
	return nil
}

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

type fakeLegacyRepo struct{}

func (fakeLegacyRepo) FindApproved(_ context.Context, _ uint, _ string) ([]models.LegacyTemplate, error) {
	return nil, nil
}

func (fakeLegacyRepo) FindApprovedAnyLanguage(_ context.Context, _ uint) ([]models.LegacyTemplate, error) {
	return nil, nil
}

type fakeRestaurants struct{}

func (fakeRestaurants) DefaultLanguage(_ context.Context, _ uint) (string, error) { return "it", nil }
func (fakeRestaurants) NameOf(_ context.Context, _ uint) (string, error)          { return "Da Mario", nil }

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	failNext bool
}

func (f *fakeSender) SendText(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return "", errors.New("gateway down")
	}
	f.sent = append(f.sent, body)
	return "SM1", nil
}

func (f *fakeSender) SendMedia(ctx context.Context, to, body, _ string) (string, error) {
	return f.SendText(ctx, to, body)
}

type fakeJobStore struct {
	jobs []*models.ScheduledMessage
}

func (f *fakeJobStore) Create(_ context.Context, job *models.ScheduledMessage) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeJobStore) Get(_ context.Context, id uuid.UUID) (*models.ScheduledMessage, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, scheduler.ErrNotFound
}

func (f *fakeJobStore) Update(_ context.Context, job *models.ScheduledMessage) error {
	for i, j := range f.jobs {
		if j.ID == job.ID {
			f.jobs[i] = job
		}
	}
	return nil
}

func (f *fakeJobStore) FindDue(_ context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error) {
	return nil, nil
}

func (f *fakeJobStore) ClaimDue(_ context.Context, _ time.Time, _ int, _ time.Duration) ([]models.ScheduledMessage, error) {
	return nil, nil
}

func (f *fakeJobStore) CancelPendingForCampaign(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}

func (f *fakeJobStore) CancelPendingForRestaurant(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}

type fakeInteractions struct {
	recorded []*models.Interaction
}

func (f *fakeInteractions) Record(_ context.Context, interaction *models.Interaction) error {
	interaction.ID = uint(len(f.recorded) + 1)
	f.recorded = append(f.recorded, interaction)
	return nil
}

// --- harness ---------------------------------------------------------

type harness struct {
	handler  *Handler
	sender   *fakeSender
	jobStore *fakeJobStore
	jobs     *scheduler.Service
	contacts *fakeContactRepo
}

func newHarness(configs []models.BotConfig, msgs []models.RestaurantMessage) *harness {
	sender := &fakeSender{}
	jobStore := &fakeJobStore{}
	resolver := messages.NewResolver(&fakeMsgRepo{msgs: msgs}, fakeLegacyRepo{}, fakeRestaurants{})
	dispatcher := delivery.NewDispatcher(sender, nil)
	jobs := scheduler.NewService(jobStore, dispatcher, resolver, staticNilConfigs{}, fakeRestaurants{})
	contactRepo := &fakeContactRepo{byKey: map[string]*models.WhatsAppContact{}}

	h := NewHandler(
		bot.NewResolver(&fakeConfigRepo{configs: configs}),
		contacts.NewRegistry(contactRepo),
		resolver,
		dispatcher,
		jobs,
		&fakeInteractions{},
		nil,
		fakeRestaurants{},
	)
	return &harness{handler: h, sender: sender, jobStore: jobStore, jobs: jobs, contacts: contactRepo}
}

type staticNilConfigs struct{}

func (staticNilConfigs) ForRestaurant(_ context.Context, _ uint) (*models.BotConfig, error) {
	return nil, nil
}

func (h *harness) post(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	h.handler.HandleMessage(c)
	return w
}

// --- tests -----------------------------------------------------------

func TestTriggerScenario(t *testing.T) {
	// BotConfig "ciao", delay 120; inbound "Ciao" from +39 → italian
	// menu sent, review job pending at now+120min.
	h := newHarness(
		[]models.BotConfig{{ID: 1, RestaurantID: 10, TriggerPhrase: "ciao", Active: true, ReviewDelayMinutes: 120}},
		[]models.RestaurantMessage{
			{RestaurantID: 10, Type: "menu", Language: "it", Body: "Ecco il menu, {{customer_name}}!", Active: true},
			{RestaurantID: 10, Type: "review", Language: "it", Body: "Com'è andata da {{restaurant_name}}?", Active: true},
		},
	)

	before := time.Now()
	w := h.post(t, url.Values{
		"Body":        {"Ciao"},
		"From":        {"whatsapp:+393331234567"},
		"To":          {"whatsapp:+390000000000"},
		"ProfileName": {"Anna"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(h.sender.sent) != 1 {
		t.Fatalf("expected 1 menu send, got %d", len(h.sender.sent))
	}
	if h.sender.sent[0] != "Ecco il menu, Anna!" {
		t.Errorf("menu body = %q", h.sender.sent[0])
	}

	if len(h.jobStore.jobs) != 1 {
		t.Fatalf("expected 1 scheduled job, got %d", len(h.jobStore.jobs))
	}
	job := h.jobStore.jobs[0]
	if job.Status != models.JobStatusPending || job.Type != models.MessageTypeReview {
		t.Errorf("job = %+v", job)
	}
	earliest := before.Add(119 * time.Minute)
	latest := time.Now().Add(121 * time.Minute)
	if job.ScheduledFor.Before(earliest) || job.ScheduledFor.After(latest) {
		t.Errorf("scheduled_for = %v, want ~now+120min", job.ScheduledFor)
	}
	if !strings.Contains(job.Body, "{{restaurant_name}}") {
		t.Errorf("review body should be copied with placeholders intact: %q", job.Body)
	}

	// Cancelling before it fires yields cancelled.
	if err := h.jobs.Cancel(context.Background(), job.ID); err != nil {
		t.Fatal(err)
	}
	if job.Status != models.JobStatusCancelled {
		t.Errorf("status after cancel = %s", job.Status)
	}
}

func TestUnmatchedTriggerIsSilentNoOp(t *testing.T) {
	h := newHarness(
		[]models.BotConfig{{ID: 1, RestaurantID: 10, TriggerPhrase: "menu", Active: true}},
		nil,
	)

	w := h.post(t, url.Values{
		"Body": {"show menu"},
		"From": {"whatsapp:+393331234567"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(h.sender.sent) != 0 {
		t.Error("unmatched trigger must not send anything")
	}
	if len(h.jobStore.jobs) != 0 {
		t.Error("unmatched trigger must not schedule anything")
	}
}

func TestGatewayFailureRepliesWithApology(t *testing.T) {
	h := newHarness(
		[]models.BotConfig{{ID: 1, RestaurantID: 10, TriggerPhrase: "ciao", Active: true, ReviewDelayMinutes: 60}},
		[]models.RestaurantMessage{
			{RestaurantID: 10, Type: "menu", Language: "it", Body: "menu", Active: true},
		},
	)
	h.sender.failNext = true

	w := h.post(t, url.Values{
		"Body": {"ciao"},
		"From": {"whatsapp:+393331234567"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; gateway failure must not surface as an error", w.Code)
	}
	if !strings.Contains(w.Body.String(), apologyBody) {
		t.Errorf("expected apology reply, got %q", w.Body.String())
	}
	if len(h.jobStore.jobs) != 0 {
		t.Error("no review job after a failed menu send")
	}
}

func TestMenuFallsBackToDefaultTier(t *testing.T) {
	// No content configured at all: the customer still gets a reply.
	h := newHarness(
		[]models.BotConfig{{ID: 1, RestaurantID: 10, TriggerPhrase: "ciao", Active: true, ReviewDelayMinutes: 60}},
		nil,
	)

	w := h.post(t, url.Values{
		"Body":        {"ciao"},
		"From":        {"whatsapp:+393331234567"},
		"ProfileName": {"Anna"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(h.sender.sent) != 1 {
		t.Fatal("default-tier content must still be sent")
	}
	if !strings.Contains(h.sender.sent[0], "Anna") {
		t.Errorf("default greeting should substitute the name: %q", h.sender.sent[0])
	}
}

func TestRepeatContactIncrementsInteractionCount(t *testing.T) {
	h := newHarness(
		[]models.BotConfig{{ID: 1, RestaurantID: 10, TriggerPhrase: "ciao", Active: true, ReviewDelayMinutes: 60}},
		nil,
	)

	h.post(t, url.Values{"Body": {"ciao"}, "From": {"whatsapp:+393331234567"}, "ProfileName": {"Anna"}})
	h.post(t, url.Values{"Body": {"ciao"}, "From": {"+39 333 1234567"}, "ProfileName": {"Anna"}})

	if len(h.contacts.byKey) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(h.contacts.byKey))
	}
	for _, c := range h.contacts.byKey {
		if c.InteractionCount != 2 {
			t.Errorf("interaction count = %d, want 2", c.InteractionCount)
		}
	}
}
