package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	return Normalize(page, limit)
}

// Normalize clamps raw page/limit values and derives the offset.
func Normalize(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Data describes one page of results.
type Data struct {
	PageCount   int `json:"pageCount"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	TotalCount  int `json:"totalCount"`
}

// GetPaginationData computes the page count for a total record count.
// pageCount is 0 when there are no records.
func GetPaginationData(page, limit int, total int64) Data {
	pageCount := 0
	if total > 0 {
		pageCount = int((total + int64(limit) - 1) / int64(limit))
	}
	return Data{
		PageCount:   pageCount,
		CurrentPage: page,
		Limit:       limit,
		TotalCount:  int(total),
	}
}

// ResponseMessage selects the listing message for a page. Within range
// the retrieval succeeded; on an out-of-range first page with no active
// status filter the caller simply has no records yet; otherwise the
// requested page is past the end.
func ResponseMessage(p Data, statusFilter, modelName string) string {
	if p.PageCount >= p.CurrentPage {
		return fmt.Sprintf("%ss retrieved successfully", modelName)
	}
	if p.CurrentPage == 1 && statusFilter == "" {
		return fmt.Sprintf("You have no %ss at the moment", strings.ToLower(modelName))
	}
	return fmt.Sprintf("No %ss exists for this page", strings.ToLower(modelName))
}
