// Package dmap provides a mapping over a finite, statically enumerable key
// domain. Only overridden keys are stored; every domain key always resolves
// to a value, either its override or the shared default.
package dmap

import (
	"fmt"
	"reflect"

	"github.com/wecisecode/collections/errs"
)

// Enum constrains a key type to supply its own complete value domain.
// Values must be callable on the zero value and return the domain in a
// stable order.
type Enum[K any] interface {
	comparable
	Values() []K
}

// Entry is one stored key-value pair.
type Entry[K, V any] struct {
	Key   K `json:"key" yaml:"key" msgpack:"key"`
	Value V `json:"value" yaml:"value" msgpack:"value"`
}

// State is the serializable snapshot of a DefaultedMap: the default value
// plus the stored overrides in insertion order.
type State[K, V any] struct {
	Default V             `json:"defaultValue" yaml:"defaultValue" msgpack:"defaultValue"`
	Entries []Entry[K, V] `json:"entries" yaml:"entries" msgpack:"entries"`
}

type options[V any] struct {
	capacity int
	eqV      func(a, b V) bool
}

type Option[V any] func(*options[V])

// WithCapacity presizes the override storage.
func WithCapacity[V any](n int) Option[V] {
	return func(o *options[V]) {
		o.capacity = n
	}
}

// WithValueEquals sets the value equality comparer, used to detect
// effective changes. Default is reflect.DeepEqual.
func WithValueEquals[V any](eq func(a, b V) bool) Option[V] {
	return func(o *options[V]) {
		o.eqV = eq
	}
}

// DefaultedMap maps every key of the domain of K to a value. Reads are
// total. Mutations on keys outside the domain fail with UndefinedKey.
//
// A DefaultedMap is not safe for concurrent use, callers own its whole
// lifecycle and serialize access externally if shared.
type DefaultedMap[K Enum[K], V any] struct {
	domain   []K
	index    map[K]int
	items    map[K]V
	order    []K
	def      V
	eqV      func(a, b V) bool
	revision uint64
}

// New creates a DefaultedMap with the given default value. The key domain
// is materialized once from the zero value of K. Duplicate keys in the
// domain are a programming error and panic.
func New[K Enum[K], V any](defaultValue V, opts ...Option[V]) *DefaultedMap[K, V] {
	var probe K
	vals := probe.Values()
	domain := make([]K, len(vals))
	copy(domain, vals)
	index := make(map[K]int, len(domain))
	for i, k := range domain {
		if _, ok := index[k]; ok {
			panic(fmt.Sprintf("dmap: duplicate domain key %v", k))
		}
		index[k] = i
	}
	var opt options[V]
	for _, o := range opts {
		o(&opt)
	}
	if opt.eqV == nil {
		opt.eqV = func(a, b V) bool { return reflect.DeepEqual(a, b) }
	}
	capacity := opt.capacity
	if capacity < 0 {
		capacity = 0
	}
	return &DefaultedMap[K, V]{
		domain: domain,
		index:  index,
		items:  make(map[K]V, capacity),
		order:  make([]K, 0, capacity),
		def:    defaultValue,
		eqV:    opt.eqV,
	}
}

// Get returns the override stored for key, or the default value when key
// has no override or lies outside the domain. Get never fails.
func (m *DefaultedMap[K, V]) Get(key K) V {
	if v, ok := m.items[key]; ok {
		return v
	}
	return m.def
}

// GetOverride returns the stored override and true, or the default value
// and false when key has no override or lies outside the domain.
func (m *DefaultedMap[K, V]) GetOverride(key K) (V, bool) {
	if v, ok := m.items[key]; ok {
		return v, true
	}
	return m.def, false
}

// HasOverride reports whether an override is physically stored for key.
func (m *DefaultedMap[K, V]) HasOverride(key K) bool {
	_, ok := m.items[key]
	return ok
}

// InDomain reports whether key belongs to the declared domain, regardless
// of overrides.
func (m *DefaultedMap[K, V]) InDomain(key K) bool {
	_, ok := m.index[key]
	return ok
}

// Add stores a new override. It fails with UndefinedKey when key lies
// outside the domain and with DuplicateKey when an override already
// exists, use Set to overwrite.
func (m *DefaultedMap[K, V]) Add(key K, value V) error {
	if _, ok := m.index[key]; !ok {
		return errs.UndefinedKeyError.New("key %v outside the declared domain", key)
	}
	if _, ok := m.items[key]; ok {
		return errs.DuplicateKeyError.New("key %v already has an override", key)
	}
	m.items[key] = value
	m.order = append(m.order, key)
	m.revision++
	return nil
}

// Set stores or replaces the override for key. Replacing an override with
// an equal value is a no-op that keeps the revision untouched. Set fails
// with UndefinedKey when key lies outside the domain.
func (m *DefaultedMap[K, V]) Set(key K, value V) error {
	if _, ok := m.index[key]; !ok {
		return errs.UndefinedKeyError.New("key %v outside the declared domain", key)
	}
	if old, ok := m.items[key]; ok {
		if m.eqV(old, value) {
			return nil
		}
		m.items[key] = value
		m.revision++
		return nil
	}
	m.items[key] = value
	m.order = append(m.order, key)
	m.revision++
	return nil
}

// Remove deletes the override for key and reports whether one existed.
// Removing an absent or out-of-domain key changes nothing.
func (m *DefaultedMap[K, V]) Remove(key K) bool {
	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.revision++
	return true
}

// Clear drops all overrides. The default value stays. Clear always counts
// as a modification.
func (m *DefaultedMap[K, V]) Clear() {
	m.items = make(map[K]V)
	m.order = m.order[:0]
	m.revision++
}

// Default returns the fallback value for keys without override.
func (m *DefaultedMap[K, V]) Default() V {
	return m.def
}

// SetDefault replaces the fallback value. Setting an equal value is a
// no-op. Overrides equal to the new default are kept as overrides.
func (m *DefaultedMap[K, V]) SetDefault(value V) {
	if m.eqV(m.def, value) {
		return
	}
	m.def = value
	m.revision++
}

// Len returns the number of stored overrides.
func (m *DefaultedMap[K, V]) Len() int {
	return len(m.items)
}

// Domain returns a copy of the key domain in enumeration order.
func (m *DefaultedMap[K, V]) Domain() []K {
	out := make([]K, len(m.domain))
	copy(out, m.domain)
	return out
}

// Revision returns the modification counter. Every effective mutation
// advances it, guarded iterators use it to detect concurrent modification.
func (m *DefaultedMap[K, V]) Revision() uint64 {
	return m.revision
}

// OverrideKeys returns the overridden keys in insertion order.
func (m *DefaultedMap[K, V]) OverrideKeys() []K {
	out := make([]K, len(m.order))
	copy(out, m.order)
	return out
}

// Overrides returns the stored entries in insertion order.
func (m *DefaultedMap[K, V]) Overrides() []Entry[K, V] {
	out := make([]Entry[K, V], 0, len(m.order))
	for _, k := range m.order {
		out = append(out, Entry[K, V]{k, m.items[k]})
	}
	return out
}

// CopyTo copies the stored entries in insertion order into dst starting at
// index at. It fails with InvalidParam before copying anything when dst is
// nil, at is negative or the remaining capacity is insufficient.
func (m *DefaultedMap[K, V]) CopyTo(dst []Entry[K, V], at int) error {
	if dst == nil {
		return errs.InvalidParamError.New("nil destination")
	}
	if at < 0 {
		return errs.InvalidParamError.New("negative destination index %d", at)
	}
	if len(dst)-at < len(m.items) {
		return errs.InvalidParamError.New("destination too small, need %d slots from index %d, have %d", len(m.items), at, len(dst)-at)
	}
	for i, k := range m.order {
		dst[at+i] = Entry[K, V]{k, m.items[k]}
	}
	return nil
}

// Fetch walks the full domain in enumeration order, passing each key with
// its effective value. The walk stops early when p returns false. Mutating
// the map from inside p fails the walk with ConcurrentModification.
func (m *DefaultedMap[K, V]) Fetch(p func(key K, value V) bool) error {
	rev := m.revision
	for _, k := range m.domain {
		if m.revision != rev {
			return errs.ConcurrentModificationError.New("map changed during iteration, restart to recover")
		}
		if !p(k, m.Get(k)) {
			return nil
		}
	}
	if m.revision != rev {
		return errs.ConcurrentModificationError.New("map changed during iteration, restart to recover")
	}
	return nil
}

// FetchOverrides walks the stored overrides in insertion order. The walk
// stops early when p returns false. Entries removed from inside p are
// skipped, this walk tolerates modification.
func (m *DefaultedMap[K, V]) FetchOverrides(p func(key K, value V) bool) {
	order := make([]K, len(m.order))
	copy(order, m.order)
	for _, k := range order {
		v, ok := m.items[k]
		if !ok {
			continue
		}
		if !p(k, v) {
			return
		}
	}
}

// Snapshot captures the default value and the stored entries in insertion
// order.
func (m *DefaultedMap[K, V]) Snapshot() State[K, V] {
	return State[K, V]{Default: m.def, Entries: m.Overrides()}
}

// Restore replaces the whole content with the snapshot state. All entry
// keys are validated against the domain first, a single out-of-domain key
// rejects the whole state with UndefinedKey and leaves the map untouched.
// Duplicate keys collapse to the last value at the first position, as
// repeated Set calls would. Restore always counts as a modification.
func (m *DefaultedMap[K, V]) Restore(st State[K, V]) error {
	for _, e := range st.Entries {
		if _, ok := m.index[e.Key]; !ok {
			return errs.UndefinedKeyError.New("snapshot entry key %v outside the declared domain", e.Key)
		}
	}
	items := make(map[K]V, len(st.Entries))
	order := make([]K, 0, len(st.Entries))
	for _, e := range st.Entries {
		if _, ok := items[e.Key]; !ok {
			order = append(order, e.Key)
		}
		items[e.Key] = e.Value
	}
	m.items = items
	m.order = order
	m.def = st.Default
	m.revision++
	return nil
}

// Clone returns a shallow copy sharing no mutable state with the
// original. The clone starts with revision 0.
func (m *DefaultedMap[K, V]) Clone() *DefaultedMap[K, V] {
	items := make(map[K]V, len(m.items))
	for k, v := range m.items {
		items[k] = v
	}
	order := make([]K, len(m.order))
	copy(order, m.order)
	return &DefaultedMap[K, V]{
		domain: m.domain,
		index:  m.index,
		items:  items,
		order:  order,
		def:    m.def,
		eqV:    m.eqV,
	}
}
