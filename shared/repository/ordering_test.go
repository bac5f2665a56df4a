package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sala/shared/dto"
)

type orderedEntity struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Date string `db:"date"`
}

func TestOrderingAllowsKnownColumnsOnly(t *testing.T) {
	repo := NewRepository[orderedEntity]("ordered", "ordered_entities", "id", nil, nil)

	tests := []struct {
		name     string
		sortBy   string
		sortDir  string
		expected string
	}{
		{name: "known column ascending", sortBy: "name", sortDir: "ASC", expected: "ORDER BY name ASC"},
		{name: "known column descending", sortBy: "date", sortDir: "DESC", expected: "ORDER BY date DESC"},
		{name: "table-qualified column", sortBy: "ordered_entities.id", sortDir: "ASC", expected: "ORDER BY ordered_entities.id ASC"},
		{name: "lowercase direction is normalized", sortBy: "name", sortDir: "desc", expected: "ORDER BY name DESC"},
		{name: "unknown column yields no clause", sortBy: "password", sortDir: "ASC", expected: ""},
		{name: "sql in sort column yields no clause", sortBy: "name; DROP TABLE ordered_entities", sortDir: "ASC", expected: ""},
		{name: "sql in sort direction yields no clause", sortBy: "name", sortDir: "ASC; DROP TABLE ordered_entities", expected: ""},
		{name: "missing direction yields no clause", sortBy: "name", sortDir: "", expected: ""},
		{name: "missing column yields no clause", sortBy: "", sortDir: "ASC", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := dto.QueryParams{SortBy: tt.sortBy, SortDir: tt.sortDir}

			assert.Equal(t, tt.expected, repo.ordering(params))
		})
	}
}
