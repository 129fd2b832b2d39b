package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesBindValuesAsPlaceholders(t *testing.T) {
	hostile := "x'; DROP TABLE complaints; --"
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var p predicates
	p.eq("user_id", hostile)
	p.notNull("expected_resolution_date")
	p.before("expected_resolution_date", now)
	p.neq("status", "resolved")

	assert.Equal(t,
		" WHERE user_id = $1 AND expected_resolution_date IS NOT NULL AND expected_resolution_date < $2 AND status <> $3",
		p.where())
	assert.Equal(t, []any{hostile, now, "resolved"}, p.args)
	assert.NotContains(t, p.where(), "DROP")
}

func TestPredicatesEmpty(t *testing.T) {
	var p predicates
	assert.Equal(t, "", p.where())
	assert.Equal(t, "", p.page(0, 0))
	assert.Empty(t, p.args)
}

func TestPredicatesPage(t *testing.T) {
	var p predicates
	p.eq("status", "pending")

	assert.Equal(t, " LIMIT $2 OFFSET $3", p.page(20, 40))
	assert.Equal(t, []any{"pending", 20, 40}, p.args)
}
