package request

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PaginatedRequest is the ?page=&per_page= pair of listing endpoints.
type PaginatedRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Normalized clamps the page to at least 1 and per_page into [1, MaxPerPage].
func (p PaginatedRequest) Normalized() PaginatedRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PerPage < 1:
		p.PerPage = DefaultPerPage
	case p.PerPage > MaxPerPage:
		p.PerPage = MaxPerPage
	}
	return p
}
