package delivery

import (
	"context"
	"errors"
	"testing"

	"restobot/internal/messages"
)

type fakeSender struct {
	textCalls  int
	mediaCalls int
	lastTo     string
	lastBody   string
	lastMedia  string
	fail       bool
}

func (f *fakeSender) SendText(_ context.Context, to, body string) (string, error) {
	f.textCalls++
	f.lastTo, f.lastBody = to, body
	if f.fail {
		return "", errors.New("provider unavailable")
	}
	return "SM123", nil
}

func (f *fakeSender) SendMedia(_ context.Context, to, body, mediaURL string) (string, error) {
	f.mediaCalls++
	f.lastTo, f.lastBody, f.lastMedia = to, body, mediaURL
	if f.fail {
		return "", errors.New("provider unavailable")
	}
	return "MM456", nil
}

func TestDeliverSubstitutesVariables(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, nil)

	content := &messages.Content{Body: "Ciao {{customer_name}}, benvenuto da {{restaurant_name}}!"}
	res := d.Deliver(context.Background(), 1, "+393331234567", content, Variables{
		CustomerName:   "Anna",
		RestaurantName: "Da Mario",
	})

	if !res.Success || res.DeliveryID != "SM123" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if sender.lastBody != "Ciao Anna, benvenuto da Da Mario!" {
		t.Errorf("body = %q", sender.lastBody)
	}
	if sender.textCalls != 1 || sender.mediaCalls != 0 {
		t.Error("plain content must use the text path")
	}
}

func TestDeliverAppendsCTA(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, nil)

	content := &messages.Content{
		Body:    "Il nostro menu",
		CTAURL:  "https://book.example",
		CTAText: "Prenota qui",
	}
	d.Deliver(context.Background(), 1, "+393331234567", content, Variables{})

	want := "Il nostro menu\n\nPrenota qui: https://book.example"
	if sender.lastBody != want {
		t.Errorf("body = %q, want %q", sender.lastBody, want)
	}
}

func TestDeliverMediaPath(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, nil)

	content := &messages.Content{Body: "Menu", MediaURL: "https://cdn.example/menu.pdf"}
	res := d.Deliver(context.Background(), 1, "+393331234567", content, Variables{})

	if sender.mediaCalls != 1 || sender.textCalls != 0 {
		t.Error("media content must use the media path")
	}
	if sender.lastMedia != "https://cdn.example/menu.pdf" {
		t.Errorf("media url = %q", sender.lastMedia)
	}
	if res.DeliveryID != "MM456" {
		t.Errorf("delivery id = %q", res.DeliveryID)
	}
}

func TestDeliverFailureIsData(t *testing.T) {
	sender := &fakeSender{fail: true}
	d := NewDispatcher(sender, nil)

	res := d.Deliver(context.Background(), 1, "+393331234567", &messages.Content{Body: "x"}, Variables{})
	if res.Success {
		t.Fatal("expected failure result")
	}
	if res.Error == "" {
		t.Fatal("failure must carry the provider error")
	}
}
