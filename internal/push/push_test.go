package push

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

func TestNewEventMergesPayload(t *testing.T) {
	payload := map[string]any{"bill_id": "1", "amount": 500}
	ev, err := NewEvent("payment_approved", payload, Target("7"), Audience(AudienceAdmins))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type":"payment_approved",
		"target_user_id":"7",
		"audience":"admins",
		"bill_id":"1",
		"amount":500
	}`, string(ev.Raw))

	id, ok := ev.Field("bill_id")
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	_, ok = ev.Field("amount")
	assert.False(t, ok, "non-string fields are not returned")
}

func TestNewEventRejectsNonObject(t *testing.T) {
	_, err := NewEvent("bill_deleted", []string{"1"})
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"new_bill_created","recipient_id":"all"}`))
	require.NoError(t, err)
	assert.Equal(t, "new_bill_created", ev.Type)
	assert.Empty(t, ev.TargetUserID)

	_, err = Decode([]byte(`{"bill_id":"1"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func receive(t *testing.T, c Conn) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		return ev, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func assertNoEvent(t *testing.T, c Conn) {
	t.Helper()
	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event %s", ev.Type)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubRoutesByRoom(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	resident, err := hub.Dial(ctx, models.Viewer{ID: "7", Role: models.RoleResident})
	require.NoError(t, err)
	require.NoError(t, resident.Join(ctx, RoomBroadcast, UserRoom("7")))

	admin, err := hub.Dial(ctx, models.Viewer{ID: "1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, admin.Join(ctx, RoomBroadcast, UserRoom("1"), RoomAdmins))

	ev, err := NewEvent("new_payment_receipt", nil, Audience(AudienceAdmins))
	require.NoError(t, err)
	require.NoError(t, hub.Publish(ctx, RoomAdmins, ev))

	got, ok := receive(t, admin)
	require.True(t, ok)
	assert.Equal(t, "new_payment_receipt", got.Type)
	assertNoEvent(t, resident)

	ev, err = NewEvent("new_bill_created", nil)
	require.NoError(t, err)
	require.NoError(t, hub.Publish(ctx, RoomBroadcast, ev))
	_, ok = receive(t, admin)
	assert.True(t, ok)
	_, ok = receive(t, resident)
	assert.True(t, ok)
}

func TestHubCloseAll(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	c, err := hub.Dial(ctx, models.Viewer{ID: "7", Role: models.RoleResident})
	require.NoError(t, err)
	require.NoError(t, c.Join(ctx, UserRoom("7")))
	assert.Equal(t, 1, hub.Connections())

	hub.CloseAll()
	_, ok := receive(t, c)
	assert.False(t, ok, "events channel closes on connection loss")
	assert.Equal(t, 0, hub.Connections())
	assert.ErrorIs(t, c.Join(ctx, RoomBroadcast), ErrClosed)
	assert.NoError(t, c.Close(), "closing twice is safe")
}
