package models

// InboundMessage is the form payload the messaging provider posts on
// every inbound WhatsApp message. Trigger matching only looks at Body.
type InboundMessage struct {
	Body        string `form:"Body"`
	From        string `form:"From"` // e.g. "whatsapp:+393331234567"
	To          string `form:"To"`
	ProfileName string `form:"ProfileName"`
	MessageSID  string `form:"MessageSid"`
}
