package clinic

import (
	"testing"
)

func TestFilter_Merge(t *testing.T) {
	base := Filter{FilterSearch: "garcia", FilterIsActive: true, FilterPage: 3}

	out := base.Merge(Filter{FilterPage: 1, FilterIsActive: nil, "specialty": "Cardiología"})

	if got := out[FilterSearch]; got != "garcia" {
		t.Errorf("expected search preserved, got %v", got)
	}
	if got := out[FilterPage]; got != 1 {
		t.Errorf("expected page overwritten to 1, got %v", got)
	}
	if _, ok := out[FilterIsActive]; ok {
		t.Error("expected nil merge value to clear isActive")
	}
	if got := out["specialty"]; got != "Cardiología" {
		t.Errorf("expected new key added, got %v", got)
	}
	// receiver untouched
	if got := base[FilterPage]; got != 3 {
		t.Errorf("expected receiver unchanged, got page %v", got)
	}
	if _, ok := base[FilterIsActive]; !ok {
		t.Error("expected receiver to still carry isActive")
	}
}

func TestFilter_MergeIntoNil(t *testing.T) {
	var base Filter
	out := base.Merge(Filter{FilterSearch: "lopez"})
	if got := out[FilterSearch]; got != "lopez" {
		t.Errorf("expected merge into nil filter to work, got %v", got)
	}
}

func TestFilter_PageAndLimitDefaults(t *testing.T) {
	tests := []struct {
		name      string
		f         Filter
		wantPage  int
		wantLimit int
	}{
		{"empty", Filter{}, 1, 10},
		{"explicit", Filter{FilterPage: 4, FilterLimit: 25}, 4, 25},
		{"zero page", Filter{FilterPage: 0}, 1, 10},
		{"negative page", Filter{FilterPage: -2}, 1, 10},
		{"limit over max", Filter{FilterLimit: 500}, 1, 100},
		{"json numbers", Filter{FilterPage: float64(2), FilterLimit: float64(20)}, 2, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Page(); got != tt.wantPage {
				t.Errorf("Page() = %d, want %d", got, tt.wantPage)
			}
			if got := tt.f.Limit(); got != tt.wantLimit {
				t.Errorf("Limit() = %d, want %d", got, tt.wantLimit)
			}
		})
	}
}

func TestFilter_Encode(t *testing.T) {
	f := Filter{
		FilterSearch:   "garcia",
		FilterIsActive: true,
		FilterSortBy:   "lastName",
		FilterPage:     2,
		FilterLimit:    float64(10),
		"minAge":       float64(18),
	}
	q := f.Encode()

	if got := q.Get(FilterIsActive); got != "true" {
		t.Errorf("expected isActive=true, got %q", got)
	}
	if got := q.Get(FilterPage); got != "2" {
		t.Errorf("expected page=2, got %q", got)
	}
	if got := q.Get(FilterLimit); got != "10" {
		t.Errorf("expected limit=10, got %q", got)
	}
	if got := q.Get("minAge"); got != "18" {
		t.Errorf("expected whole float encoded as integer, got %q", got)
	}
	if got := q.Get(FilterSearch); got != "garcia" {
		t.Errorf("expected search=garcia, got %q", got)
	}
}

func TestFilter_EncodeOmitsAbsentKeys(t *testing.T) {
	f := Filter{FilterSearch: "x"}
	f = f.Merge(Filter{FilterSearch: nil, FilterIsActive: false})

	q := f.Encode()
	if _, ok := q[FilterSearch]; ok {
		t.Error("expected cleared search key to stay off the wire")
	}
	// false is a real tri-state value, not an absent one
	if got := q.Get(FilterIsActive); got != "false" {
		t.Errorf("expected isActive=false on the wire, got %q", got)
	}
}

func TestFilter_EncodeDeterministic(t *testing.T) {
	f := Filter{"b": 1, "a": 2, "c": 3}
	first := f.Encode().Encode()
	for i := 0; i < 20; i++ {
		if got := f.Encode().Encode(); got != first {
			t.Fatalf("encoding not deterministic: %q vs %q", got, first)
		}
	}
}
