// Package push defines the push-notification channel between the backend and
// connected dashboards.
//
// Events are flat JSON objects: the routing fields type, target_user_id and
// audience sit next to the fields of the entity they describe.
package push

import (
	"encoding/json"
	"fmt"
)

// AudienceAdmins marks events meant only for admin viewers.
const AudienceAdmins = "admins"

const (
	// RoomAdmins is joined by every admin viewer.
	RoomAdmins = "admins"

	// RoomBroadcast is joined by every viewer.
	RoomBroadcast = "broadcast"
)

// UserRoom is the identity-scoped room of one user.
func UserRoom(userID string) string { return "user:" + userID }

// Event is one push notification.
type Event struct {
	Type         string
	TargetUserID string
	Audience     string

	// Raw is the complete event object, routing fields included.
	Raw json.RawMessage
}

// EventOption sets a routing field on a new event.
type EventOption func(*Event)

// Target addresses the event to one user.
func Target(userID string) EventOption {
	return func(e *Event) { e.TargetUserID = userID }
}

// Audience restricts the event to a viewer class such as AudienceAdmins.
func Audience(audience string) EventOption {
	return func(e *Event) { e.Audience = audience }
}

// NewEvent builds an event whose body is payload's JSON object with the
// routing fields merged in. payload may be nil.
func NewEvent(eventType string, payload any, opts ...EventOption) (Event, error) {
	ev := Event{Type: eventType}
	for _, opt := range opts {
		opt(&ev)
	}

	fields := map[string]json.RawMessage{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return Event{}, fmt.Errorf("%s payload must be a JSON object: %w", eventType, err)
		}
	}

	set := func(key, value string) {
		if value == "" {
			return
		}
		b, _ := json.Marshal(value)
		fields[key] = b
	}
	set("type", ev.Type)
	set("target_user_id", ev.TargetUserID)
	set("audience", ev.Audience)

	raw, err := json.Marshal(fields)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	ev.Raw = raw
	return ev, nil
}

// Decode parses a wire event.
func Decode(data []byte) (Event, error) {
	var head struct {
		Type         string `json:"type"`
		TargetUserID string `json:"target_user_id"`
		Audience     string `json:"audience"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Event{}, fmt.Errorf("failed to decode push event: %w", err)
	}
	if head.Type == "" {
		return Event{}, fmt.Errorf("push event has no type")
	}
	return Event{
		Type:         head.Type,
		TargetUserID: head.TargetUserID,
		Audience:     head.Audience,
		Raw:          append(json.RawMessage(nil), data...),
	}, nil
}

// Field returns the string field name of the event body.
func (e Event) Field(name string) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Raw, &fields); err != nil {
		return "", false
	}
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}
