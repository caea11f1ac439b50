package utils

// Pagination defaults for HR list endpoints
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationParams holds pagination request parameters
type PaginationParams struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// PaginationMeta holds pagination response metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// GetPaginationParams clamps page to at least 1 and limit into
// [1, MaxPageLimit], using DefaultPageLimit when limit is unset
func GetPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return PaginationParams{Page: page, Limit: limit}
}

// Offset returns the SQL offset
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta builds response metadata for a page of totalCount items
func (p PaginationParams) Meta(totalCount int64) PaginationMeta {
	totalPages := 0
	if p.Limit > 0 && totalCount > 0 {
		totalPages = int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PaginationMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
