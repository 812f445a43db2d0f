package clinic

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// Well-known filter keys shared across resources. Individual resources add
// their own keys (specialty, floorId, minAge, ...) on top.
const (
	FilterSearch    = "search"
	FilterIsActive  = "isActive"
	FilterSortBy    = "sortBy"
	FilterSortOrder = "sortOrder"
	FilterPage      = "page"
	FilterLimit     = "limit"
)

// Filter maps filter keys to scalar values. A key that is absent (or merged
// away with a nil value) is "not applied" and is never sent on the wire.
type Filter map[string]any

// Merge shallow-merges partial into a copy of f. A key whose value is nil in
// partial clears that filter. The receiver is not modified.
func (f Filter) Merge(partial Filter) Filter {
	out := make(Filter, len(f)+len(partial))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range partial {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of f.
func (f Filter) Clone() Filter {
	return Filter(nil).Merge(f)
}

// Page returns the page filter clamped to >= 1, defaulting to 1.
func (f Filter) Page() int {
	if n, ok := f.intValue(FilterPage); ok && n >= 1 {
		return n
	}
	return 1
}

// Limit returns the limit filter clamped into its valid range.
func (f Filter) Limit() int {
	if n, ok := f.intValue(FilterLimit); ok {
		return pagination.Params{Page: 1, Limit: n}.Normalize().Limit
	}
	return pagination.DefaultLimit
}

func (f Filter) intValue(key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Encode serializes the applied filters as query parameters. Booleans
// serialize as the literal strings "true"/"false", numeric values as decimal
// strings, and page/limit are clamped to their invariants. Keys are emitted
// in sorted order so encoded strings are deterministic.
func (f Filter) Encode() url.Values {
	q := url.Values{}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case FilterPage:
			q.Set(k, strconv.Itoa(f.Page()))
		case FilterLimit:
			q.Set(k, strconv.Itoa(f.Limit()))
		default:
			if s, ok := encodeScalar(f[k]); ok {
				q.Set(k, s)
			}
		}
	}
	return q
}

func encodeScalar(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		// Whole-valued floats (JSON numbers) encode as integers.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}
