package model

import (
	"time"

	"sala/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID          = "id"
	FieldSchedID     = "sched_id"
	FieldUserID      = "user_id"
	FieldDate        = "date"
	FieldDescription = "description"
	FieldStatus      = "status"
)

// Reservation statuses. A reservation occupies its slot-instance
// (sched_id, date) while waiting or accepted; denied and cancelled are
// terminal and free the slot.
const (
	StatusWaiting   = "waiting"
	StatusAccepted  = "accepted"
	StatusDenied    = "denied"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the statuses that block other bookings of the
// same slot-instance.
var ActiveStatuses = []string{StatusWaiting, StatusAccepted}

type Reservation struct {
	ID          string    `db:"id"`
	SchedID     string    `db:"sched_id"`
	UserID      string    `db:"user_id"`
	Date        time.Time `db:"date"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	model.Metadata
}

// IsActive reports whether the reservation currently occupies its
// slot-instance.
func (r *Reservation) IsActive() bool {
	return r.Status == StatusWaiting || r.Status == StatusAccepted
}
