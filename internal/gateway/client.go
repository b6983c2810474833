// Package gateway is the thin client for the external messaging
// provider. The provider accepts a phone number, text, and at most one
// media URL, and answers with a delivery identifier.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Sender is what the dispatcher and scheduler depend on; the resty
// client below is the production implementation.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
	SendMedia(ctx context.Context, to, body, mediaURL string) (string, error)
}

// Provider-side scheduling window for sends that ride the gateway's own
// "send later" feature (campaign broadcast). Locally polled jobs are
// not bound by it.
const (
	MinScheduleLead    = 15 * time.Minute
	MaxScheduleHorizon = 7 * 24 * time.Hour
)

// ClampToWindow fits a requested send time into the provider's allowed
// scheduling window relative to now.
func ClampToWindow(now, requested time.Time) time.Time {
	if min := now.Add(MinScheduleLead); requested.Before(min) {
		return min
	}
	if max := now.Add(MaxScheduleHorizon); requested.After(max) {
		return max
	}
	return requested
}

type Client struct {
	httpClient *resty.Client
	accountSID string
	from       string
}

type sendResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func NewClient(baseURL, accountSID, authToken, from string, timeout time.Duration) (*Client, error) {
	if baseURL == "" || accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("gateway baseURL, accountSID and authToken are required")
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(accountSID, authToken).
		SetTimeout(timeout)

	return &Client{httpClient: httpClient, accountSID: accountSID, from: from}, nil
}

func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	return c.send(ctx, map[string]string{
		"From": whatsappAddr(c.from),
		"To":   whatsappAddr(to),
		"Body": body,
	})
}

func (c *Client) SendMedia(ctx context.Context, to, body, mediaURL string) (string, error) {
	return c.send(ctx, map[string]string{
		"From":     whatsappAddr(c.from),
		"To":       whatsappAddr(to),
		"Body":     body,
		"MediaUrl": mediaURL,
	})
}

func (c *Client) send(ctx context.Context, form map[string]string) (string, error) {
	url := fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.accountSID)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&sendResponse{}).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	if resp.IsError() {
		log.Error().
			Int("status", resp.StatusCode()).
			Str("to", form["To"]).
			Str("body", resp.String()).
			Msg("gateway rejected send")
		return "", fmt.Errorf("gateway error: status %s", resp.Status())
	}

	result := resp.Result().(*sendResponse)
	if result.ErrorCode != nil {
		return "", fmt.Errorf("gateway error %d: %s", *result.ErrorCode, result.ErrorMessage)
	}
	return result.SID, nil
}

// whatsappAddr prefixes a bare number with the channel scheme the
// provider expects; already-prefixed addresses pass through.
func whatsappAddr(number string) string {
	if number == "" {
		return number
	}
	if len(number) >= 9 && number[:9] == "whatsapp:" {
		return number
	}
	if number[0] != '+' {
		number = "+" + number
	}
	return "whatsapp:" + number
}
