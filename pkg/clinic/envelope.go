package clinic

import (
	"bytes"
	"encoding/json"

	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// ListPage is the canonical list shape every backend envelope normalizes
// into, regardless of which wrapper the endpoint happened to use.
type ListPage[T any] struct {
	Data        []T  `json:"data"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Pagination returns the derived projection of the page.
func (p *ListPage[T]) Pagination() pagination.Pagination {
	return pagination.Derive(p.Total, p.Page, p.Limit)
}

// listEnvelope is the normalized intermediate form: raw items plus whatever
// pagination metadata the envelope carried.
type listEnvelope struct {
	items []json.RawMessage
	total *int
	page  *int
	limit *int
}

// envelopeMeta are the metadata fields an envelope level may carry.
type envelopeMeta struct {
	Total *int `json:"total"`
	Page  *int `json:"page"`
	Limit *int `json:"limit"`
}

// decodeListEnvelope resolves the backend's envelope polymorphism through a
// single ordered predicate chain:
//
//  1. bare array
//  2. {items: [...], total?, page?, limit?}
//  3. {data: {data: [...], total?, page?, limit?}}
//  4. {data: [...], total?, page?, limit?}
//
// Any other shape yields an empty item list rather than an error.
func decodeListEnvelope(body []byte) listEnvelope {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return listEnvelope{}
	}

	// 1. Bare array: items only, no pagination metadata.
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return listEnvelope{}
		}
		return listEnvelope{items: items}
	}

	var outer struct {
		envelopeMeta
		Items []json.RawMessage `json:"items"`
		Data  json.RawMessage   `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &outer); err != nil {
		return listEnvelope{}
	}

	// 2. {items: [...]}.
	if outer.Items != nil {
		return listEnvelope{items: outer.Items, total: outer.Total, page: outer.Page, limit: outer.Limit}
	}

	inner := bytes.TrimSpace(outer.Data)
	if len(inner) == 0 {
		return listEnvelope{}
	}

	// 3. Double-nested: {data: {data: [...]}} with metadata on the inner level.
	if inner[0] == '{' {
		var nested struct {
			envelopeMeta
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(inner, &nested); err != nil || nested.Data == nil {
			return listEnvelope{}
		}
		env := listEnvelope{items: nested.Data, total: nested.Total, page: nested.Page, limit: nested.Limit}
		// Metadata occasionally rides on the outer envelope instead.
		if env.total == nil {
			env.total = outer.Total
		}
		if env.page == nil {
			env.page = outer.Page
		}
		if env.limit == nil {
			env.limit = outer.Limit
		}
		return env
	}

	// 4. {data: [...]}.
	if inner[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(inner, &items); err != nil {
			return listEnvelope{}
		}
		return listEnvelope{items: items, total: outer.Total, page: outer.Page, limit: outer.Limit}
	}

	return listEnvelope{}
}

// resolvePage builds the canonical ListPage from a decoded envelope, filling
// metadata the envelope omitted from the filter that produced the request.
func resolvePage[T any](env listEnvelope, items []T, f Filter) *ListPage[T] {
	page := f.Page()
	if env.page != nil && *env.page >= 1 {
		page = *env.page
	}
	limit := f.Limit()
	if env.limit != nil && *env.limit > 0 {
		limit = *env.limit
	}
	total := len(items)
	if env.total != nil && *env.total >= 0 {
		total = *env.total
	}
	pg := pagination.Derive(total, page, limit)
	return &ListPage[T]{
		Data:        items,
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  pg.TotalPages,
		HasNextPage: pg.HasNextPage,
		HasPrevPage: pg.HasPrevPage,
	}
}

// decodeEntityEnvelope unwraps a single-entity response body, preferring
// item, then data, then the raw body itself. Unlike list decoding, an
// unrecognizable shape here is an error: mutations must not silently yield
// zero values.
func decodeEntityEnvelope(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedResponse
	}
	if trimmed[0] == '{' {
		var wrapper struct {
			Item json.RawMessage `json:"item"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, ErrUnexpectedResponse
		}
		if isJSONObject(wrapper.Item) {
			return wrapper.Item, nil
		}
		if isJSONObject(wrapper.Data) {
			return wrapper.Data, nil
		}
		return trimmed, nil
	}
	return nil, ErrUnexpectedResponse
}

func isJSONObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}
