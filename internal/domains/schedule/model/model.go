package model

import "sala/shared/model"

const (
	TableName  = "schedules"
	EntityName = "schedule"

	FieldID        = "id"
	FieldRoomID    = "room_id"
	FieldStartTime = "start_time"
	FieldEndTime   = "end_time"
)

// Schedule is a recurring daily slot definition on a room, not a
// dated occurrence. Slot boundaries are times of day ("HH:mm:ss"),
// start strictly before end, never spanning midnight. Schedules are
// immutable once created; edits are delete plus recreate so existing
// reservations never silently point at a changed time window.
type Schedule struct {
	ID        string `db:"id"`
	RoomID    string `db:"room_id"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
	model.Metadata
}
