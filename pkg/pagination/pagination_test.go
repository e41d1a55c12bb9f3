package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := Normalize(0, 0)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, DefaultLimit, p.Limit)
		assert.Equal(t, 0, p.Offset)
	})

	t.Run("clamps limit to max", func(t *testing.T) {
		p := Normalize(2, 500)
		assert.Equal(t, MaxLimit, p.Limit)
		assert.Equal(t, MaxLimit, p.Offset)
	})

	t.Run("negative page falls back", func(t *testing.T) {
		p := Normalize(-3, 10)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 0, p.Offset)
	})

	t.Run("offset derivation", func(t *testing.T) {
		p := Normalize(3, 7)
		assert.Equal(t, 14, p.Offset)
	})
}

func TestGetPaginationData(t *testing.T) {
	t.Run("partial last page rounds up", func(t *testing.T) {
		d := GetPaginationData(1, 3, 7)
		assert.Equal(t, 3, d.PageCount)
		assert.Equal(t, 7, d.TotalCount)
	})

	t.Run("exact division", func(t *testing.T) {
		d := GetPaginationData(2, 5, 10)
		assert.Equal(t, 2, d.PageCount)
	})

	t.Run("no records means zero pages", func(t *testing.T) {
		d := GetPaginationData(1, 10, 0)
		assert.Equal(t, 0, d.PageCount)
	})
}

func TestResponseMessage(t *testing.T) {
	t.Run("page within range", func(t *testing.T) {
		d := GetPaginationData(2, 3, 7)
		assert.Equal(t, "Requests retrieved successfully", ResponseMessage(d, "", "Request"))
	})

	t.Run("first page with nothing at all", func(t *testing.T) {
		d := GetPaginationData(1, 10, 0)
		assert.Equal(t, "You have no requests at the moment", ResponseMessage(d, "", "Request"))
	})

	t.Run("first page empty under a status filter", func(t *testing.T) {
		d := GetPaginationData(1, 10, 0)
		assert.Equal(t, "No requests exists for this page", ResponseMessage(d, "open", "Request"))
	})

	t.Run("page past the end", func(t *testing.T) {
		d := GetPaginationData(4, 3, 7)
		assert.Equal(t, "No approvals exists for this page", ResponseMessage(d, "", "Approval"))
	})
}
