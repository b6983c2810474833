// Package delivery turns resolved content into an actual gateway send.
package delivery

import (
	"context"
	"strings"

	"restobot/internal/gateway"
	"restobot/internal/messages"

	"github.com/rs/zerolog/log"
)

// Placeholders substituted into message bodies.
const (
	VarCustomerName   = "{{customer_name}}"
	VarRestaurantName = "{{restaurant_name}}"
)

// Variables carries the substitution values for one send.
type Variables struct {
	CustomerName   string
	RestaurantName string
}

// Result is the uniform outcome. Deliver never returns an error:
// callers treat failure as data.
type Result struct {
	Success    bool
	DeliveryID string
	Error      string
}

// OutboundLogger records sends for the operator dashboard. Optional.
type OutboundLogger interface {
	LogOutbound(ctx context.Context, restaurantID uint, phone, body, status, errMsg string)
}

type Dispatcher struct {
	sender gateway.Sender
	logs   OutboundLogger
}

func NewDispatcher(sender gateway.Sender, logs OutboundLogger) *Dispatcher {
	return &Dispatcher{sender: sender, logs: logs}
}

// Deliver substitutes variables, renders the CTA as an inline suffix
// (the channel has no native button slot here), and picks the media or
// text send path.
func (d *Dispatcher) Deliver(ctx context.Context, restaurantID uint, to string, content *messages.Content, vars Variables) Result {
	body := RenderBody(content, vars)

	var deliveryID string
	var err error
	if content.MediaURL != "" {
		deliveryID, err = d.sender.SendMedia(ctx, to, body, content.MediaURL)
	} else {
		deliveryID, err = d.sender.SendText(ctx, to, body)
	}

	if err != nil {
		log.Error().Err(err).Str("to", to).Uint("restaurant_id", restaurantID).Msg("delivery failed")
		d.logOutbound(ctx, restaurantID, to, body, "failed", err.Error())
		return Result{Success: false, Error: err.Error()}
	}

	d.logOutbound(ctx, restaurantID, to, body, "sent", "")
	return Result{Success: true, DeliveryID: deliveryID}
}

// RenderBody applies variable substitution and the CTA suffix.
func RenderBody(content *messages.Content, vars Variables) string {
	body := content.Body
	body = strings.ReplaceAll(body, VarCustomerName, vars.CustomerName)
	body = strings.ReplaceAll(body, VarRestaurantName, vars.RestaurantName)

	if content.CTAURL != "" {
		label := content.CTAText
		if label == "" {
			label = content.CTAURL
		}
		body += "\n\n" + label + ": " + content.CTAURL
	}
	return body
}

func (d *Dispatcher) logOutbound(ctx context.Context, restaurantID uint, phone, body, status, errMsg string) {
	if d.logs != nil {
		d.logs.LogOutbound(ctx, restaurantID, phone, body, status, errMsg)
	}
}
