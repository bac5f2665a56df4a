package model

import "sala/shared/model"

const (
	TableName  = "tags"
	EntityName = "tag"

	FieldID   = "id"
	FieldName = "name"
)

type Tag struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
	model.Metadata
}
