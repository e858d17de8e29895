package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/transport"
)

type sentRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeClient serves GETs from a path map and answers every Send with one
// canned response.
type fakeClient struct {
	mu       sync.Mutex
	gets     map[string]string
	sendResp string
	sendErr  error
	sent     []sentRequest
	getPaths []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{gets: map[string]string{}}
}

func (f *fakeClient) Get(_ context.Context, path string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getPaths = append(f.getPaths, path)
	body, ok := f.gets[path]
	if !ok {
		return json.RawMessage(`[]`), nil
	}
	return json.RawMessage(body), nil
}

func (f *fakeClient) Send(_ context.Context, method, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := json.Marshal(body)
	f.sent = append(f.sent, sentRequest{Method: method, Path: path, Body: string(data)})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return json.RawMessage(f.sendResp), nil
}

type notification struct {
	Level   Level
	Message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []notification
}

func (n *recordingNotifier) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, notification{level, message})
}

func (n *recordingNotifier) last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return notification{}
	}
	return n.notes[len(n.notes)-1]
}

var (
	resident7 = models.Viewer{ID: "7", Role: models.RoleResident}
	admin1    = models.Viewer{ID: "1", Role: models.RoleAdmin}
)

const billsBody = `[
	{"bill_id":"1","item_name":"Common fee","amount":"500","due_date":"2025-03-31","recipient_id":"all"},
	{"bill_id":"2","item_name":"Parking","amount":"300","due_date":"2025-03-31","recipient_id":"9"}
]`

func newSession(t *testing.T, v models.Viewer) (*Session, *fakeClient, *recordingNotifier) {
	t.Helper()
	client := newFakeClient()
	client.gets["/bills"] = billsBody
	notifier := &recordingNotifier{}
	s, err := New(client, v, notifier)
	require.NoError(t, err)
	return s, client, notifier
}

func TestNewSessionRejectsInvalidViewer(t *testing.T) {
	_, err := New(newFakeClient(), models.Viewer{ID: "7"}, nil)
	assert.Error(t, err)
}

func TestTargetsByRole(t *testing.T) {
	s, _, _ := newSession(t, resident7)
	assert.Len(t, s.Targets(), 6)
	assert.Nil(t, s.Users)

	s, _, _ = newSession(t, admin1)
	assert.Len(t, s.Targets(), 7)
}

func TestResidentFetchesOwnPayments(t *testing.T) {
	s, client, _ := newSession(t, resident7)
	require.NoError(t, s.RefreshAll(context.Background()))
	assert.Contains(t, client.getPaths, "/payments?user_id=7")
	assert.NotContains(t, client.getPaths, "/users")
}

func TestBillViewsForResident(t *testing.T) {
	s, client, _ := newSession(t, resident7)
	client.gets["/payments?user_id=7"] = `[{"payment_id":"p1","bill_id":"1","user_id":"7","amount":"500","payment_method":"promptpay","status":"pending","submitted_at":"2025-03-02T10:00:00Z"}]`
	require.NoError(t, s.RefreshAll(context.Background()))

	views := s.BillViews()
	require.Len(t, views, 1, "bill addressed to resident 9 is hidden")
	assert.Equal(t, "1", views[0].ID)
	assert.Equal(t, models.StatusPendingVerification, views[0].Status)
}

func TestSubmitPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the bill amount by default and refreshes payments", func(t *testing.T) {
		s, client, notifier := newSession(t, resident7)
		require.NoError(t, s.RefreshAll(ctx))
		client.sendResp = `{"message":"Payment submitted","payment":{"payment_id":"p1","bill_id":"1","user_id":"7","amount":"500","payment_method":"promptpay","status":"pending"}}`
		client.gets["/payments?user_id=7"] = `[{"payment_id":"p1","bill_id":"1","user_id":"7","amount":"500","payment_method":"promptpay","status":"pending"}]`

		p, err := s.SubmitPayment(ctx, models.PaymentInput{BillID: "1", Method: "promptpay"})
		require.NoError(t, err)
		assert.Equal(t, "p1", p.ID)

		require.Len(t, client.sent, 1)
		assert.Equal(t, "/payments", client.sent[0].Path)
		assert.JSONEq(t, `{"bill_id":"1","amount":"500","payment_method":"promptpay"}`, client.sent[0].Body)
		assert.Equal(t, LevelSuccess, notifier.last().Level)
		assert.Equal(t, models.StatusPendingVerification, s.BillViews()[0].Status)
	})

	t.Run("refuses while a payment is pending", func(t *testing.T) {
		s, client, notifier := newSession(t, resident7)
		client.gets["/payments?user_id=7"] = `[{"payment_id":"p1","bill_id":"1","user_id":"7","status":"pending"}]`
		require.NoError(t, s.RefreshAll(ctx))

		_, err := s.SubmitPayment(ctx, models.PaymentInput{BillID: "1", Method: "promptpay"})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "bill_id", vErr.Field)
		assert.Empty(t, client.sent)
		assert.Equal(t, LevelWarning, notifier.last().Level)
	})

	t.Run("allows resubmission after rejection", func(t *testing.T) {
		s, client, _ := newSession(t, resident7)
		client.gets["/payments?user_id=7"] = `[{"payment_id":"p1","bill_id":"1","user_id":"7","status":"rejected"}]`
		require.NoError(t, s.RefreshAll(ctx))
		client.sendResp = `{"payment":{"payment_id":"p2","bill_id":"1","user_id":"7","status":"pending"}}`

		_, err := s.SubmitPayment(ctx, models.PaymentInput{BillID: "1", Method: "cash", Amount: decimal.NewFromInt(250)})
		require.NoError(t, err)
		require.Len(t, client.sent, 1)
		assert.JSONEq(t, `{"bill_id":"1","amount":"250","payment_method":"cash"}`, client.sent[0].Body)
	})

	t.Run("refuses bills the resident cannot see", func(t *testing.T) {
		s, client, _ := newSession(t, resident7)
		require.NoError(t, s.RefreshAll(ctx))

		_, err := s.SubmitPayment(ctx, models.PaymentInput{BillID: "2", Method: "cash"})
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
		assert.Empty(t, client.sent)
	})

	t.Run("admins cannot pay", func(t *testing.T) {
		s, client, _ := newSession(t, admin1)
		_, err := s.SubmitPayment(ctx, models.PaymentInput{BillID: "1", Method: "cash"})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, client.sent)
	})

	t.Run("backend conflict leaves caches untouched", func(t *testing.T) {
		s, client, notifier := newSession(t, resident7)
		require.NoError(t, s.RefreshAll(ctx))
		before := s.Payments.Snapshot()
		gets := len(client.getPaths)
		client.sendErr = &transport.ApplicationError{Status: 409, Message: "payment already pending"}

		_, err := s.SubmitPayment(ctx, models.PaymentInput{BillID: "1", Method: "cash"})
		var appErr *transport.ApplicationError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, before, s.Payments.Snapshot())
		assert.Len(t, client.getPaths, gets, "no refresh after a failed mutation")
		assert.Equal(t, notification{LevelError, "Submit payment failed: payment already pending"}, notifier.last())
	})
}

func TestAdminMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("create bill validates before sending", func(t *testing.T) {
		s, client, _ := newSession(t, admin1)
		_, err := s.CreateBill(ctx, models.BillInput{ItemName: "Water", Amount: decimal.NewFromInt(100)})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "due_date", vErr.Field)
		assert.Empty(t, client.sent)
	})

	t.Run("create bill", func(t *testing.T) {
		s, client, _ := newSession(t, admin1)
		client.sendResp = `{"message":"Bill created","bill":{"bill_id":"3","item_name":"Water","amount":"100","due_date":"2025-04-30","recipient_id":"all"}}`

		bill, err := s.CreateBill(ctx, models.BillInput{
			ItemName:  "Water",
			Amount:    decimal.NewFromInt(100),
			DueDate:   models.NewDate(2025, 4, 30),
			Recipient: models.RecipientAll(),
		})
		require.NoError(t, err)
		assert.Equal(t, "3", bill.ID)
		assert.Equal(t, "POST", client.sent[0].Method)
		assert.Contains(t, client.getPaths, "/bills")
	})

	t.Run("approve and reject hit the decision routes", func(t *testing.T) {
		s, client, _ := newSession(t, admin1)
		client.sendResp = `{"message":"ok"}`

		require.NoError(t, s.ApprovePayment(ctx, "p1"))
		require.NoError(t, s.RejectPayment(ctx, "p2"))
		require.Len(t, client.sent, 2)
		assert.Equal(t, sentRequest{Method: "PUT", Path: "/payments/approve/p1", Body: "null"}, client.sent[0])
		assert.Equal(t, "/payments/reject/p2", client.sent[1].Path)
	})

	t.Run("residents cannot use admin operations", func(t *testing.T) {
		s, client, _ := newSession(t, resident7)

		assert.ErrorIs(t, s.ApprovePayment(ctx, "p1"), ErrForbidden)
		assert.ErrorIs(t, s.DeleteBill(ctx, "1"), ErrForbidden)
		assert.ErrorIs(t, s.UpdateUserStatus(ctx, "9", models.UserApproved), ErrForbidden)
		assert.ErrorIs(t, s.UpdateRepairStatus(ctx, "r1", models.RepairCompleted), ErrForbidden)
		assert.ErrorIs(t, s.DeleteAnnouncement(ctx, "a1"), ErrForbidden)
		_, err := s.CreateAnnouncement(ctx, models.AnnouncementInput{Title: "t", Content: "c"})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = s.Settlements()
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, client.sent)
	})

	t.Run("status changes carry the status body", func(t *testing.T) {
		s, client, _ := newSession(t, admin1)
		client.sendResp = `{"message":"ok"}`

		require.NoError(t, s.UpdateBookingStatus(ctx, "bk1", models.BookingApproved))
		assert.Equal(t, sentRequest{Method: "PUT", Path: "/booking-requests/bk1", Body: `{"status":"approved"}`}, client.sent[0])

		err := s.UpdateBookingStatus(ctx, "bk1", models.BookingStatus("maybe"))
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
	})
}

func TestResidentRequests(t *testing.T) {
	ctx := context.Background()
	s, client, _ := newSession(t, resident7)
	client.sendResp = `{"message":"ok","booking_request":{"booking_id":"bk1","user_id":"7","location":"Clubhouse","status":"pending"}}`

	_, err := s.CreateBooking(ctx, models.BookingInput{
		Location:      "Clubhouse",
		Date:          models.NewDate(2025, 5, 1),
		StartTime:     "18:00",
		EndTime:       "17:00",
		AttendeeCount: 10,
	})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "start_time", vErr.Field)

	b, err := s.CreateBooking(ctx, models.BookingInput{
		Location:      "Clubhouse",
		Date:          models.NewDate(2025, 5, 1),
		StartTime:     "17:00",
		EndTime:       "19:00",
		AttendeeCount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "bk1", b.ID)
	assert.Contains(t, client.getPaths, "/booking-requests")
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()
	s, client, notifier := newSession(t, resident7)
	client.gets["/documents"] = `[{"document_id":"d1","document_name":"Pet permit","file_path":"uploads/pet.pdf","uploaded_by_user_id":"7"},
		{"document_id":"d2","document_name":"Lease","file_path":"uploads/lease.pdf","uploaded_by_user_id":"9"}]`
	client.sendResp = `{"message":"Document uploaded successfully","document":{"document_id":"d1","document_name":"Pet permit","file_path":"uploads/pet.pdf","uploaded_by_user_id":"7"}}`

	_, err := s.UploadDocument(ctx, models.DocumentInput{Name: "Pet permit"})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "file_path", vErr.Field)
	assert.Empty(t, client.sent, "invalid input is not sent")

	doc, err := s.UploadDocument(ctx, models.DocumentInput{Name: "Pet permit", FilePath: "uploads/pet.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, LevelSuccess, notifier.last().Level)

	mine := s.MyDocuments()
	require.Len(t, mine, 1, "documents of other residents are filtered out")
	assert.Equal(t, "d1", mine[0].ID)

	err = s.DeleteDocument(ctx, "")
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "document_id", vErr.Field)
}

func TestSettlements(t *testing.T) {
	s, client, _ := newSession(t, admin1)
	client.gets["/payments"] = `[{"payment_id":"p1","bill_id":"1","user_id":"7","amount":"500","status":"paid","decided_at":"2025-03-03T00:00:00Z"}]`
	client.gets["/users"] = `[
		{"user_id":"7","username":"a","role":"resident","status":"approved"},
		{"user_id":"8","username":"b","role":"resident","status":"approved"}
	]`
	require.NoError(t, s.RefreshAll(context.Background()))

	settlements, err := s.Settlements()
	require.NoError(t, err)
	require.Len(t, settlements, 2)
	assert.Equal(t, []string{"8"}, settlements[0].Outstanding)
	assert.Equal(t, models.StatusUnpaid, settlements[1].Status, "bill for resident 9 has no payment")
}
