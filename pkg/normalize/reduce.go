package normalize

import "time"

// LatestSet holds the most recent record per key.
// Keys keep the order in which they were first seen.
type LatestSet[K comparable, V any] struct {
	order []K
	items map[K]V
}

// ReduceLatest keeps, for every key, the record with the greatest timestamp.
// A stored record is only replaced by a strictly newer one, so on equal
// timestamps the record encountered first is retained.
//
//nolint:whitespace // can't make both editor and linter happy
func ReduceLatest[K comparable, V any](
	records []V,
	keyFn func(V) K,
	timeFn func(V) time.Time,
) *LatestSet[K, V] {
	ret := &LatestSet[K, V]{items: make(map[K]V)}
	for _, rec := range records {
		key := keyFn(rec)
		cur, ok := ret.items[key]
		if !ok {
			ret.order = append(ret.order, key)
			ret.items[key] = rec
			continue
		}
		if timeFn(rec).After(timeFn(cur)) {
			ret.items[key] = rec
		}
	}
	return ret
}

func (s *LatestSet[K, V]) Get(key K) (V, bool) {
	v, ok := s.items[key]
	return v, ok
}

func (s *LatestSet[K, V]) Len() int {
	return len(s.order)
}

func (s *LatestSet[K, V]) Keys() []K {
	return append([]K(nil), s.order...)
}

// Values returns the retained records in first-seen key order
func (s *LatestSet[K, V]) Values() []V {
	ret := make([]V, 0, len(s.order))
	for _, k := range s.order {
		ret = append(ret, s.items[k])
	}
	return ret
}
