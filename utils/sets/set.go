package sets

import (
	"cmp"
	"slices"
)

type Set[K comparable] map[K]struct{}

func New[K comparable]() Set[K] {
	return make(Set[K])
}

// Builds a set from keys, passing each through f first. Useful for case-insensitive sets.
func FromSliceFunc[K comparable](keys []K, f func(key K) K) Set[K] {
	s := make(Set[K], len(keys))
	for _, k := range keys {
		s.AppendFunc(k, f)
	}

	return s
}

func FromSlice[K comparable](keys []K) Set[K] {
	return FromSliceFunc(keys, func(k K) K { return k })
}

func (s Set[K]) Has(key K) bool {
	_, ok := s[key]
	return ok
}

func (s Set[K]) Append(key K) {
	s[key] = struct{}{}
}

// Passes the key to func f before adding it to this set.
func (s Set[K]) AppendFunc(key K, f func(key K) K) {
	s[f(key)] = struct{}{}
}

// Returns all elements in this set as a slice, in no particular order.
func (s Set[K]) Keys() []K {
	keys := make([]K, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}

	return keys
}

// Returns all elements in s that are not in other.
func (s Set[K]) Difference(other Set[K]) Set[K] {
	set := make(Set[K])
	for k := range s {
		if !other.Has(k) {
			set.Append(k)
		}
	}

	return set
}

// Keys of an ordered set in ascending order.
func Sorted[K cmp.Ordered](s Set[K]) []K {
	keys := s.Keys()
	slices.Sort(keys)

	return keys
}
