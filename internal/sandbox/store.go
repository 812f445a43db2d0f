// Package sandbox provides an in-memory implementation of the clinic admin
// HTTP contract: seeded synthetic patients, doctors, users, roles, floors,
// offices, bookings, medical histories, and chatbot prompts behind the same
// routes the production backend serves. It exists for developer on-boarding,
// demos, and tests that need a real HTTP boundary without external services.
package sandbox

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// doc is a stored entity. Documents are schemaless JSON objects, which keeps
// the store generic across all nine resources and matches what goes on the
// wire anyway.
type doc = map[string]any

// collection is a thread-safe document set with insertion-ordered keys so
// pagination is deterministic.
type collection struct {
	mu    sync.RWMutex
	docs  map[string]doc
	order []string
}

func newCollection() *collection {
	return &collection{docs: make(map[string]doc)}
}

func (c *collection) insert(id string, d doc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = d
}

func (c *collection) get(id string) (doc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.docs[id]
	if !ok {
		return nil, false
	}
	return cloneDoc(d), true
}

// patch shallow-merges fields into the stored document and returns the
// result.
func (c *collection) patch(id string, fields doc) (doc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[id]
	if !ok {
		return nil, false
	}
	for k, v := range fields {
		d[k] = v
	}
	return cloneDoc(d), true
}

func (c *collection) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// all returns copies of every document in insertion order.
func (c *collection) all() []doc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]doc, 0, len(c.order))
	for _, id := range c.order {
		if d, ok := c.docs[id]; ok {
			out = append(out, cloneDoc(d))
		}
	}
	return out
}

// query filters, sorts, and slices a page out of the collection.
func (c *collection) query(match func(doc) bool, sortBy string, descending bool, limit, offset int) (items []doc, total int) {
	filtered := make([]doc, 0)
	for _, d := range c.all() {
		if match == nil || match(d) {
			filtered = append(filtered, d)
		}
	}
	if sortBy != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			less := compareValues(filtered[i][sortBy], filtered[j][sortBy])
			if descending {
				return !less
			}
			return less
		})
	}
	total = len(filtered)
	if offset >= total {
		return []doc{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total
}

func cloneDoc(d doc) doc {
	cp := make(doc, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

// compareValues orders two document field values: numbers numerically,
// everything else by string form.
func compareValues(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af < bf
	}
	return strings.ToLower(toString(a)) < strings.ToLower(toString(b))
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// containsFold reports whether any of the doc's given fields contains the
// term, case-insensitively.
func containsFold(d doc, fields []string, term string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(toString(d[f])), term) {
			return true
		}
	}
	return false
}
