package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
)

// ParsePaging reads page/per_page query params, clamping per_page to max.
func ParsePaging(c *gin.Context, max int) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPageSize)))
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if max > 0 && perPage > max {
		perPage = max
	}
	return page, perPage
}

type Pagination struct {
	Page        int   `json:"page"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

func NewPagination(page, perPage int, totalCount int64) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}

	totalPages := int((totalCount + int64(perPage) - 1) / int64(perPage))

	return Pagination{
		Page:        page,
		PerPage:     perPage,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		HasNext:     page < totalPages,
		HasPrevious: page > 1 && totalCount > 0,
	}
}

// Offset returns the SQL offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ListResponse is the shared list envelope. Results mirrors Data for
// older clients that still read the results field.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Results    []T        `json:"results"`
	Pagination Pagination `json:"pagination"`
}

func NewListResponse[T any](data []T, p Pagination) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{
		Data:       data,
		Results:    data,
		Pagination: p,
	}
}
