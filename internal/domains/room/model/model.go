package model

import (
	"sala/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID        = "id"
	FieldName      = "name"
	FieldRoomType  = "room_type"
	FieldStatus    = "status"
	FieldTagIDs    = "tag_ids"
	FieldPhotoURLs = "photo_urls"
)

const (
	RoomTypeClass      = "class"
	RoomTypeLaboratory = "laboratory"
	RoomTypeTheater    = "theater"
)

const (
	StatusOpen     = "open"
	StatusReserved = "reserved"
	// StatusClosed blocks new bookings on every schedule the room owns.
	// Existing accepted reservations stay honored.
	StatusClosed = "closed"
)

type Room struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	RoomType  string         `db:"room_type"`
	Status    string         `db:"status"`
	TagIDs    pq.Int64Array  `db:"tag_ids"`
	PhotoURLs pq.StringArray `db:"photo_urls"`
	model.Metadata
}
