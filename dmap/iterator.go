package dmap

import (
	"github.com/wecisecode/collections/errs"
)

// Iterator is a lazy pull iterator. Guarded iterators capture the revision
// at creation and fail on the first Next after any modification.
type Iterator[K Enum[K], V any] struct {
	m       *DefaultedMap[K, V]
	keys    []K
	rev     uint64
	guarded bool
	pos     int
	key     K
	value   V
	err     error
}

// Iter iterates the full domain in enumeration order, yielding every key
// with its effective value read at pull time. The iterator is guarded: any
// modification of the map fails the next Next with ConcurrentModification,
// reported by Err. Iteration never silently yields stale data.
func (m *DefaultedMap[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{m: m, keys: m.domain, rev: m.revision, guarded: true}
}

// IterOverrides iterates the overrides present at creation in insertion
// order. The iterator is unguarded: entries removed mid-iteration are
// skipped, value changes are observed, added entries are not.
func (m *DefaultedMap[K, V]) IterOverrides() *Iterator[K, V] {
	keys := make([]K, len(m.order))
	copy(keys, m.order)
	return &Iterator[K, V]{m: m, keys: keys}
}

// Next advances to the next pair. It returns false when the iteration is
// exhausted or failed, the two cases are told apart by Err.
func (it *Iterator[K, V]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.guarded && it.m.revision != it.rev {
		it.err = errs.ConcurrentModificationError.New("map changed during iteration, restart to recover")
		return false
	}
	for it.pos < len(it.keys) {
		k := it.keys[it.pos]
		it.pos++
		if it.guarded {
			it.key, it.value = k, it.m.Get(k)
			return true
		}
		if v, ok := it.m.items[k]; ok {
			it.key, it.value = k, v
			return true
		}
		// 中途被删除的键跳过
	}
	return false
}

// Key returns the key of the current pair.
func (it *Iterator[K, V]) Key() K {
	return it.key
}

// Value returns the value of the current pair.
func (it *Iterator[K, V]) Value() V {
	return it.value
}

// Entry returns the current pair.
func (it *Iterator[K, V]) Entry() Entry[K, V] {
	return Entry[K, V]{it.key, it.value}
}

// Err returns ConcurrentModification when a guarded iteration observed a
// modification, nil otherwise.
func (it *Iterator[K, V]) Err() error {
	return it.err
}
