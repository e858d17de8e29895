// Package models defines the core domain models for the village dashboard.
//
// # Entities
//
// The backend persists and the dashboard caches:
//   - User: a resident or administrator account
//   - Bill: a charge issued to one resident or to every resident
//   - Payment: a resident's evidence of settling a Bill, approved or rejected by an admin
//   - RepairRequest, BookingRequest: per-resident requests handled by admins
//   - Announcement: village-wide notices
//
// # Derived Models
//
// DerivedBillView is never persisted. It is recomputed from the bill and payment
// caches for one Viewer by the reconciler package.
//
// # Design Principles
//
//  1. **Closed variants**: Role, statuses and Recipient reject unknown values when parsed
//  2. **IDs, not pointers**: relationships are ID strings (Payment.BillID, Bill.IssuedBy)
//  3. **Cacheable**: every cached entity implements Key and Complete so a pushed payload
//     can be applied in place of a full refetch
package models
