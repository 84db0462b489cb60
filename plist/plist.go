// Package plist provides a list of priority-value pairs with unique
// priorities, kept sorted by descending priority. The value of the highest
// priority pair is the effective value, a configured default takes its
// place while the list is empty. Changes of the effective value and of the
// default are observable through synchronous subscriptions.
package plist

import (
	"cmp"
	"reflect"
	"sort"
)

// Pair is one priority-value pair.
type Pair[P, V any] struct {
	Priority P `json:"priority" yaml:"priority" msgpack:"priority"`
	Value    V `json:"value" yaml:"value" msgpack:"value"`
}

// State is the serializable snapshot of a PriorityList: the default value
// plus the pairs.
type State[P, V any] struct {
	Default V            `json:"defaultValue" yaml:"defaultValue" msgpack:"defaultValue"`
	List    []Pair[P, V] `json:"list" yaml:"list" msgpack:"list"`
}

type options[P, V any] struct {
	eqP func(a, b P) bool
	eqV func(a, b V) bool
}

type Option[P, V any] func(*options[P, V])

// WithPriorityEquals sets the priority equality comparer. Default is the
// ordering comparer reporting 0.
func WithPriorityEquals[P, V any](eq func(a, b P) bool) Option[P, V] {
	return func(o *options[P, V]) {
		o.eqP = eq
	}
}

// WithValueEquals sets the value equality comparer, used for change
// detection and value matching. Default is reflect.DeepEqual.
func WithValueEquals[P, V any](eq func(a, b V) bool) Option[P, V] {
	return func(o *options[P, V]) {
		o.eqV = eq
	}
}

// PriorityList holds priority-value pairs sorted by descending priority.
// Priorities are unique, adding an existing priority replaces its value in
// place.
//
// A PriorityList is not safe for concurrent use. Notification handlers run
// inline on the mutating call and must not mutate the same list.
type PriorityList[P, V any] struct {
	pairs  []Pair[P, V]
	def    V
	cmpP   func(a, b P) int
	eqP    func(a, b P) bool
	eqV    func(a, b V) bool
	subsE  []subscriber[V]
	subsD  []subscriber[V]
	nextID uint64
}

// New creates a PriorityList ordering priorities by their natural order.
func New[P cmp.Ordered, V any](defaultValue V, opts ...Option[P, V]) *PriorityList[P, V] {
	return NewCmp(defaultValue, func(a, b P) int { return cmp.Compare(a, b) }, opts...)
}

// NewCmp creates a PriorityList ordering priorities by an explicit
// comparer, for priority types without a natural order.
func NewCmp[P, V any](defaultValue V, cmpP func(a, b P) int, opts ...Option[P, V]) *PriorityList[P, V] {
	if cmpP == nil {
		panic("plist: nil priority comparer")
	}
	var opt options[P, V]
	for _, o := range opts {
		o(&opt)
	}
	if opt.eqP == nil {
		opt.eqP = func(a, b P) bool { return cmpP(a, b) == 0 }
	}
	if opt.eqV == nil {
		opt.eqV = func(a, b V) bool { return reflect.DeepEqual(a, b) }
	}
	return &PriorityList[P, V]{
		def:  defaultValue,
		cmpP: cmpP,
		eqP:  opt.eqP,
		eqV:  opt.eqV,
	}
}

func (l *PriorityList[P, V]) effective() V {
	if len(l.pairs) > 0 {
		return l.pairs[0].Value
	}
	return l.def
}

// checkTransition 比较修改前后的生效值，发生变化时同步通知
func (l *PriorityList[P, V]) checkTransition(before V) {
	after := l.effective()
	if !l.eqV(before, after) {
		l.notifyEffective(before, after)
	}
}

func (l *PriorityList[P, V]) sortPairs() {
	sort.Slice(l.pairs, func(i, j int) bool {
		return l.cmpP(l.pairs[i].Priority, l.pairs[j].Priority) > 0
	})
}

// Add inserts the pair, or replaces the value in place when an equal
// priority is already present. A resulting change of the effective value
// is notified.
func (l *PriorityList[P, V]) Add(priority P, value V) {
	before := l.effective()
	replaced := false
	for i := range l.pairs {
		if l.eqP(l.pairs[i].Priority, priority) {
			l.pairs[i].Value = value
			replaced = true
			break
		}
	}
	if !replaced {
		l.pairs = append(l.pairs, Pair[P, V]{priority, value})
		l.sortPairs()
	}
	l.checkTransition(before)
}

// RemovePriority removes the pair with the given priority and reports
// whether one existed. A resulting change of the effective value is
// notified.
func (l *PriorityList[P, V]) RemovePriority(priority P) bool {
	for i := range l.pairs {
		if l.eqP(l.pairs[i].Priority, priority) {
			before := l.effective()
			l.pairs = append(l.pairs[:i], l.pairs[i+1:]...)
			l.checkTransition(before)
			return true
		}
	}
	return false
}

// RemoveValue removes the first pair in descending priority order whose
// value matches, and reports whether one existed. A resulting change of
// the effective value is notified.
func (l *PriorityList[P, V]) RemoveValue(value V) bool {
	for i := range l.pairs {
		if l.eqV(l.pairs[i].Value, value) {
			before := l.effective()
			l.pairs = append(l.pairs[:i], l.pairs[i+1:]...)
			l.checkTransition(before)
			return true
		}
	}
	return false
}

// Clear removes all pairs, the effective value falls back to the default.
// A resulting change of the effective value is notified.
func (l *PriorityList[P, V]) Clear() {
	if len(l.pairs) == 0 {
		return
	}
	before := l.effective()
	l.pairs = l.pairs[:0]
	l.checkTransition(before)
}

// EffectiveValue returns the value of the highest priority pair, or the
// default while the list is empty.
func (l *PriorityList[P, V]) EffectiveValue() V {
	return l.effective()
}

// Default returns the fallback value served while the list is empty.
func (l *PriorityList[P, V]) Default() V {
	return l.def
}

// SetDefault replaces the fallback value. Setting an equal value is a
// complete no-op. A change is notified as DefaultValueChanged, and while
// the list is empty the default is the effective value, so
// EffectiveValueChanged follows with the same transition.
func (l *PriorityList[P, V]) SetDefault(value V) {
	if l.eqV(l.def, value) {
		return
	}
	old := l.def
	before := l.effective()
	l.def = value
	l.notifyDefault(old, value)
	l.checkTransition(before)
}

// Len returns the number of stored pairs.
func (l *PriorityList[P, V]) Len() int {
	return len(l.pairs)
}

// Has reports whether a pair with the given priority is present.
func (l *PriorityList[P, V]) Has(priority P) bool {
	for i := range l.pairs {
		if l.eqP(l.pairs[i].Priority, priority) {
			return true
		}
	}
	return false
}

// Get returns the value stored under the given priority, or the default
// value and false when the priority is absent.
func (l *PriorityList[P, V]) Get(priority P) (V, bool) {
	for i := range l.pairs {
		if l.eqP(l.pairs[i].Priority, priority) {
			return l.pairs[i].Value, true
		}
	}
	return l.def, false
}

// Pairs returns a copy of the pairs in descending priority order.
func (l *PriorityList[P, V]) Pairs() []Pair[P, V] {
	out := make([]Pair[P, V], len(l.pairs))
	copy(out, l.pairs)
	return out
}

// Fetch walks the pairs in descending priority order. The walk stops early
// when p returns false. It runs over a copy, mutations from inside p do
// not disturb the walk.
func (l *PriorityList[P, V]) Fetch(p func(priority P, value V) bool) {
	for _, pair := range l.Pairs() {
		if !p(pair.Priority, pair.Value) {
			return
		}
	}
}

// Snapshot captures the default value and the pairs in descending
// priority order.
func (l *PriorityList[P, V]) Snapshot() State[P, V] {
	return State[P, V]{Default: l.def, List: l.Pairs()}
}

// Restore replaces the whole content with the snapshot state. The input
// order does not matter, duplicate priorities collapse to their last
// value and the ordering invariant is restored by a re-sort. At most one
// DefaultValueChanged and one EffectiveValueChanged are notified,
// comparing the state before the restore with the state after it.
func (l *PriorityList[P, V]) Restore(st State[P, V]) {
	oldDef := l.def
	before := l.effective()
	pairs := make([]Pair[P, V], 0, len(st.List))
	for _, p := range st.List {
		replaced := false
		for i := range pairs {
			if l.eqP(pairs[i].Priority, p.Priority) {
				pairs[i].Value = p.Value
				replaced = true
				break
			}
		}
		if !replaced {
			pairs = append(pairs, p)
		}
	}
	l.pairs = pairs
	l.sortPairs()
	l.def = st.Default
	if !l.eqV(oldDef, l.def) {
		l.notifyDefault(oldDef, l.def)
	}
	l.checkTransition(before)
}

// Clone returns a copy with the same pairs, default and comparers.
// Subscriptions are not cloned.
func (l *PriorityList[P, V]) Clone() *PriorityList[P, V] {
	return &PriorityList[P, V]{
		pairs: l.Pairs(),
		def:   l.def,
		cmpP:  l.cmpP,
		eqP:   l.eqP,
		eqV:   l.eqV,
	}
}
