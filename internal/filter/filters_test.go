package filter

import (
	"testing"

	"github.com/siahsang/snapfeed/internal/validator"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		f          Filter
		n          int
		start, end int
	}{
		{"unbounded", Filter{}, 5, 0, 5},
		{"first page", NewFilter(2, 0), 5, 0, 2},
		{"last partial page", NewFilter(2, 4), 5, 4, 5},
		{"offset past end", NewFilter(2, 10), 5, 5, 5},
		{"empty input", NewFilter(20, 0), 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.f.Window(tt.n)
			if start != tt.start || end != tt.end {
				t.Fatalf("Window(%d) = [%d, %d), want [%d, %d)", tt.n, start, end, tt.start, tt.end)
			}
		})
	}
}

func TestValidateFilters(t *testing.T) {
	v := validator.New()
	ValidateFilters(NewFilter(DefaultLimit, 0), v)
	if !v.IsValid() {
		t.Fatalf("default filter rejected: %v", v.Errors)
	}

	v = validator.New()
	ValidateFilters(NewFilter(MaxLimit+1, -1), v)
	if _, ok := v.Errors["limit"]; !ok {
		t.Error("expected a limit error")
	}
	if _, ok := v.Errors["offset"]; !ok {
		t.Error("expected an offset error")
	}
}
