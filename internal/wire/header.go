package wire

import "strings"

// Header is a case-insensitive, insertion-ordered header collection. It
// folds keys to lower-case so a repeated header overwrites the earlier
// value (last one wins) while still emitting headers back out in their
// original insertion order, which is what both the request parser and the
// response encoder need from a single type.
type Header struct {
	order []string          // lower-cased keys, in first-insertion order
	vals  map[string]string // lower-cased key -> value
	raw   map[string]string // lower-cased key -> original-case key, for emission
}

// NewHeader returns an empty header collection.
func NewHeader() *Header {
	return &Header{
		vals: make(map[string]string),
		raw:  make(map[string]string),
	}
}

// Set stores value under key, case-folded. A repeated Set overwrites the
// value in place without changing emission order; this realizes "last-wins
// on duplicates" for parsing while giving handlers predictable output order.
func (h *Header) Set(key, value string) {
	lk := strings.ToLower(key)
	if _, ok := h.vals[lk]; !ok {
		h.order = append(h.order, lk)
		h.raw[lk] = key
	}
	h.vals[lk] = value
}

// SetIfAbsent stores value only if key is not already present. Used by the
// encoder to fill in mandatory headers a handler may already have set.
func (h *Header) SetIfAbsent(key, value string) {
	lk := strings.ToLower(key)
	if _, ok := h.vals[lk]; ok {
		return
	}
	h.Set(key, value)
}

// Get returns the value stored under key, case-insensitively.
func (h *Header) Get(key string) (string, bool) {
	v, ok := h.vals[strings.ToLower(key)]
	return v, ok
}

// Del removes key, case-insensitively.
func (h *Header) Del(key string) {
	lk := strings.ToLower(key)
	if _, ok := h.vals[lk]; !ok {
		return
	}
	delete(h.vals, lk)
	delete(h.raw, lk)
	for i, k := range h.order {
		if k == lk {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Keys returns header names in insertion order, in their original case.
func (h *Header) Keys() []string {
	keys := make([]string, len(h.order))
	for i, lk := range h.order {
		keys[i] = h.raw[lk]
	}
	return keys
}

// Len reports the number of distinct headers stored.
func (h *Header) Len() int { return len(h.order) }
