package meta

// ListOptions represents useful options for API operations that return
// (pageable) lists of resources.
type ListOptions struct {
	// PageNumber, when non-zero, requests a specific (one-indexed) page of
	// results.
	PageNumber int64
	// PageSize, when non-zero, constrains the number of results per page.
	PageSize int64
}

// Pagination is metadata that the API server attaches to pageable lists of
// resources.
type Pagination struct {
	// TotalCount is the total number of resources matching the selection
	// criteria, across all pages.
	TotalCount int64 `json:"totalCount"`
	// PageSize is the number of resources per page.
	PageSize int64 `json:"pageSize"`
	// PageNumber is the (one-indexed) number of the page returned.
	PageNumber int64 `json:"pageNumber"`
	// TotalPages is the total number of pages available.
	TotalPages int64 `json:"totalPages"`
	Skip       int64 `json:"skip"`
	Limit      int64 `json:"limit"`
}
