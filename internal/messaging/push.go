package messaging

import (
	"encoding/json"
	"strings"
)

// EventPush is the bus event type for a push notification addressed to a
// vendor.
const EventPush = "vendor.push"

// PushMessage mirrors the push payload sent to vendor devices.
type PushMessage struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Icon  string `json:"icon,omitempty"`
	} `json:"notification"`
	Data map[string]string `json:"data,omitempty"`
}

// NewPush encodes a push message as a bus event keyed by vendor.
func NewPush(vendorID, title, body string, data map[string]string) (Message, error) {
	var push PushMessage
	push.Notification.Title = title
	push.Notification.Body = body
	push.Data = data
	value, err := json.Marshal(push)
	if err != nil {
		return Message{}, err
	}
	return NewEvent(EventPush, []byte("vendor-"+vendorID), value), nil
}

// Text renders the message as a single notification line.
func (m PushMessage) Text() string {
	title := strings.TrimSpace(m.Notification.Title)
	body := strings.TrimSpace(m.Notification.Body)
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + ": " + body
	}
}
