package fine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSQL_WithStatus(t *testing.T) {
	sql, args, err := listSQL(ListFilter{Status: StatusPending, Limit: 20, Offset: 40})
	require.NoError(t, err)

	assert.Contains(t, sql, `FROM "fines" AS "f"`)
	assert.Contains(t, sql, `INNER JOIN "borrow_requests" AS "b"`)
	assert.Contains(t, sql, `LEFT JOIN "staff" AS "s"`)
	assert.Contains(t, sql, `WHERE ("f"."status" = $1)`)
	assert.Contains(t, sql, `ORDER BY "f"."created_at" DESC, "f"."id" DESC`)
	assert.Contains(t, sql, `LIMIT $2 OFFSET $3`)
	assert.Equal(t, []interface{}{"pending", int64(20), int64(40)}, args)
}

func TestListSQL_WithoutStatus(t *testing.T) {
	sql, args, err := listSQL(ListFilter{Limit: 10})
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []interface{}{int64(10)}, args)
}

func TestCountSQL(t *testing.T) {
	sql, args, err := countSQL(ListFilter{Status: StatusPaid})
	require.NoError(t, err)

	assert.Contains(t, sql, `COUNT(*)`)
	assert.Contains(t, sql, `FROM "fines" AS "f" WHERE ("f"."status" = $1)`)
	assert.Equal(t, []interface{}{"paid"}, args)
}

func TestByCardSQL(t *testing.T) {
	sql, args, err := byCardSQL(12)
	require.NoError(t, err)

	assert.Contains(t, sql, `WHERE ("b"."library_card_id" = $1)`)
	assert.Equal(t, []interface{}{int64(12)}, args)
}
