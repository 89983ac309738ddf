package shared

// Filter represents query filter options for catalog listings
type Filter struct {
	Page     int
	PageSize int
	Search   string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 50,
	}
}

// Offset returns the number of rows to skip for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
