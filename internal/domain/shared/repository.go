package shared

// Filter represents query filter options
type Filter struct {
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter ordering newest records first
func DefaultFilter() Filter {
	return Filter{
		OrderBy:  "id",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// WithFilter returns a copy of f with an extra equality filter
func (f Filter) WithFilter(key string, value interface{}) Filter {
	filters := make(map[string]interface{}, len(f.Filters)+1)
	for k, v := range f.Filters {
		filters[k] = v
	}
	filters[key] = value
	f.Filters = filters
	return f
}
