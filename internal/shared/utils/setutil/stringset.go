// Package setutil provides generic set utilities for common ID and group
// collection patterns.
package setutil

import "sort"

// StringSet is a set of string values.
// It uses map[string]struct{} internally for memory efficiency.
type StringSet struct {
	items map[string]struct{}
}

// NewStringSet creates a new empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{
		items: make(map[string]struct{}),
	}
}

// NewStringSetFrom creates a StringSet containing the given values.
func NewStringSetFrom(values []string) *StringSet {
	s := &StringSet{
		items: make(map[string]struct{}, len(values)),
	}
	s.AddAll(values)
	return s
}

// Add adds a value to the set.
func (s *StringSet) Add(v string) {
	s.items[v] = struct{}{}
}

// AddAll adds all values to the set.
func (s *StringSet) AddAll(values []string) {
	for _, v := range values {
		s.items[v] = struct{}{}
	}
}

// Has returns true if the value exists in the set.
func (s *StringSet) Has(v string) bool {
	_, ok := s.items[v]
	return ok
}

// Remove deletes a value from the set.
func (s *StringSet) Remove(v string) {
	delete(s.items, v)
}

// Len returns the number of elements in the set.
func (s *StringSet) Len() int {
	return len(s.items)
}

// ToSlice returns all values as a slice. The order is not guaranteed.
func (s *StringSet) ToSlice() []string {
	result := make([]string, 0, len(s.items))
	for v := range s.items {
		result = append(result, v)
	}
	return result
}

// ToSortedSlice returns all values as a lexicographically sorted slice.
func (s *StringSet) ToSortedSlice() []string {
	result := s.ToSlice()
	sort.Strings(result)
	return result
}

// Difference returns a new set with elements in s that are not in other.
func (s *StringSet) Difference(other *StringSet) *StringSet {
	result := NewStringSet()
	for v := range s.items {
		if !other.Has(v) {
			result.Add(v)
		}
	}
	return result
}

// Intersection returns a new set with elements present in both sets.
func (s *StringSet) Intersection(other *StringSet) *StringSet {
	result := NewStringSet()
	for v := range s.items {
		if other.Has(v) {
			result.Add(v)
		}
	}
	return result
}

// Union returns a new set with elements from both sets.
func (s *StringSet) Union(other *StringSet) *StringSet {
	result := NewStringSet()
	for v := range s.items {
		result.Add(v)
	}
	for v := range other.items {
		result.Add(v)
	}
	return result
}
