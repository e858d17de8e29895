package events

// ActionKind selects how an event changes a cache.
type ActionKind int

const (
	// ActionUpsert applies the event body when it is a complete entity and
	// refreshes the cache otherwise.
	ActionUpsert ActionKind = iota + 1

	// ActionRemove deletes the entity named by IDField, refreshing when the
	// field is missing.
	ActionRemove

	// ActionRefresh refetches the whole cache.
	ActionRefresh
)

func (k ActionKind) String() string {
	switch k {
	case ActionUpsert:
		return "upsert"
	case ActionRemove:
		return "remove"
	case ActionRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Action is one cache change triggered by an event.
type Action struct {
	Kind    ActionKind
	Target  string
	IDField string
}

// Upsert applies the event payload to target.
func Upsert(target string) Action { return Action{Kind: ActionUpsert, Target: target} }

// RemoveBy deletes the entity whose id is in field.
func RemoveBy(target, field string) Action {
	return Action{Kind: ActionRemove, Target: target, IDField: field}
}

// Refresh refetches target.
func Refresh(target string) Action { return Action{Kind: ActionRefresh, Target: target} }

// Table maps event types to the actions they trigger.
type Table map[string][]Action

// Cache target names.
const (
	TargetBills         = "bills"
	TargetPayments      = "payments"
	TargetRepairs       = "repairs"
	TargetBookings      = "bookings"
	TargetAnnouncements = "announcements"
	TargetDocuments     = "documents"
	TargetUsers         = "users"
)

// Event types published by the backend.
const (
	EventBillCreated          = "new_bill_created"
	EventBillUpdated          = "bill_updated"
	EventBillDeleted          = "bill_deleted"
	EventPaymentReceipt       = "new_payment_receipt"
	EventPaymentApproved      = "payment_approved"
	EventPaymentRejected      = "payment_rejected"
	EventAnnouncementCreated  = "new_announcement"
	EventAnnouncementUpdated  = "announcement_updated"
	EventAnnouncementDeleted  = "announcement_deleted"
	EventRepairCreated        = "new_repair_request"
	EventRepairStatusUpdated  = "repair_status_updated"
	EventRepairDeleted        = "repair_request_deleted"
	EventBookingCreated       = "new_booking_request"
	EventBookingStatusUpdated = "booking_status_updated"
	EventBookingDeleted       = "booking_request_deleted"
	EventDocumentCreated      = "new_document"
	EventDocumentDeleted      = "document_deleted"
	EventUserRegistered       = "new_user_registered"
	EventUserUpdated          = "user_updated"
)

// DefaultTable is the invalidation table for the backend's event catalog.
func DefaultTable() Table {
	return Table{
		EventBillCreated: {Upsert(TargetBills)},
		EventBillUpdated: {Upsert(TargetBills)},
		// Payments of a deleted bill are dropped by the backend.
		EventBillDeleted: {RemoveBy(TargetBills, "bill_id"), Refresh(TargetPayments)},

		EventPaymentReceipt:  {Upsert(TargetPayments)},
		EventPaymentApproved: {Upsert(TargetPayments)},
		EventPaymentRejected: {Upsert(TargetPayments)},

		EventAnnouncementCreated: {Upsert(TargetAnnouncements)},
		EventAnnouncementUpdated: {Upsert(TargetAnnouncements)},
		EventAnnouncementDeleted: {RemoveBy(TargetAnnouncements, "announcement_id")},

		EventRepairCreated:       {Upsert(TargetRepairs)},
		EventRepairStatusUpdated: {Upsert(TargetRepairs)},
		EventRepairDeleted:       {RemoveBy(TargetRepairs, "request_id")},

		EventBookingCreated:       {Upsert(TargetBookings)},
		EventBookingStatusUpdated: {Upsert(TargetBookings)},
		EventBookingDeleted:       {RemoveBy(TargetBookings, "booking_id")},

		EventDocumentCreated: {Upsert(TargetDocuments)},
		EventDocumentDeleted: {RemoveBy(TargetDocuments, "document_id")},

		EventUserRegistered: {Upsert(TargetUsers)},
		EventUserUpdated:    {Upsert(TargetUsers)},
	}
}
