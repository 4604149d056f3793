package messaging

import (
	"encoding/json"
	"testing"
)

func TestPushMessageText(t *testing.T) {
	var m PushMessage
	m.Notification.Body = "only body"
	if m.Text() != "only body" {
		t.Fatalf("Text = %q", m.Text())
	}
	m.Notification.Title, m.Notification.Body = "only title", ""
	if m.Text() != "only title" {
		t.Fatalf("Text = %q", m.Text())
	}
}

func TestNewPushRoundTrips(t *testing.T) {
	msg, err := NewPush("7", "New order", "Order #3 received", map[string]string{"url": "/orders"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.EventType() != EventPush || string(msg.Key) != "vendor-7" {
		t.Fatalf("msg = %+v", msg)
	}
	var push PushMessage
	if err := json.Unmarshal(msg.Value, &push); err != nil {
		t.Fatal(err)
	}
	if push.Text() != "New order: Order #3 received" || push.Data["url"] != "/orders" {
		t.Fatalf("push = %+v", push)
	}
}
