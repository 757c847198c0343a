package service

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// PageRequest is a 1-indexed page request.  Zero values select defaults.
type PageRequest struct {
	Page  int
	Limit int
}

// PageMeta describes a page of results.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of T.
type Page[T any] struct {
	Data []T
	Meta PageMeta
}

func (r PageRequest) normalize() PageRequest {
	if r.Page < 1 {
		r.Page = defaultPage
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	return r
}

func (r PageRequest) offset() int { return (r.Page - 1) * r.Limit }

func newMeta(r PageRequest, total int) PageMeta {
	return PageMeta{
		Total:      total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: (total + r.Limit - 1) / r.Limit,
	}
}
