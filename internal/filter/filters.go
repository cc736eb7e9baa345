package filter

import "github.com/siahsang/snapfeed/internal/validator"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Filter struct {
	Limit  int64
	Offset int64
}

type Metadata struct {
	Count  int64 `json:"count"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func NewFilter(limit, offset int64) Filter {
	return Filter{
		Limit:  limit,
		Offset: offset,
	}
}

func ValidateFilters(filters Filter, v *validator.Validator) {
	v.Check(filters.Limit > 0, "limit", "must be greater than 0")
	v.Check(filters.Limit <= MaxLimit, "limit", "must be a maximum of 100")
	v.Check(filters.Offset >= 0, "offset", "must be greater than or equal to 0")
	v.Check(filters.Offset <= 10_000_000, "offset", "must be a maximum of 10_000_000")
}

func NewMetadata(count int64, f Filter) Metadata {
	return Metadata{Count: count, Limit: f.Limit, Offset: f.Offset}
}

// Window returns the half-open index range [start, end) that f selects out of n items.
func (f Filter) Window(n int) (start, end int) {
	start = int(f.Offset)
	if start > n {
		start = n
	}
	end = n
	if f.Limit > 0 && start+int(f.Limit) < n {
		end = start + int(f.Limit)
	}
	return start, end
}
