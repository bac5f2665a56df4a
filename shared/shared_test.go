package shared_test

import (
	"testing"

	"sala/shared"
	"sala/shared/dto"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "zero total", total: 0, limit: 10, expected: 1},
		{name: "zero limit", total: 25, limit: 0, expected: 1},
		{name: "exact pages", total: 20, limit: 10, expected: 2},
		{name: "partial last page", total: 21, limit: 10, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	patch := struct {
		Name   string `db:"name"`
		Status string `db:"status"`
		Skip   string
	}{
		Name: "Physics Lab",
		Skip: "not tagged",
	}

	fields := shared.TransformFields(patch, "admin-1")

	assert.Equal(t, "Physics Lab", fields["name"])
	assert.NotContains(t, fields, "status")
	assert.Equal(t, "admin-1", fields["modified_by"])
	assert.Contains(t, fields, "modified_at")
}

func TestFilterByID(t *testing.T) {
	group := shared.FilterByID("abc", "id", "rooms")

	where, args := group.GetWhereClause()

	assert.Contains(t, where, "rooms.id = :id")
	assert.Equal(t, "abc", args["id"])
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	filterA := shared.FilterByID("a", "id", "rooms")
	filterB := shared.FilterByID("b", "id", "rooms")

	keyA := shared.BuildCacheKeyWithQuery("room:gets", params, filterA)
	keyB := shared.BuildCacheKeyWithQuery("room:gets", params, filterB)

	assert.NotEqual(t, keyA, keyB)
	assert.Contains(t, keyA, "room:gets")
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &pq.Error{Code: "23503"}

	assert.True(t, shared.IsUniqueViolation(errors.Wrap(unique, "failed to insert data (reservation)")))
	assert.False(t, shared.IsUniqueViolation(fk))
	assert.False(t, shared.IsUniqueViolation(errors.New("database error")))

	assert.True(t, shared.IsFkViolation(fk))
	assert.False(t, shared.IsFkViolation(unique))
}
