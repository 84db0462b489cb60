package plist

type subscriber[V any] struct {
	id uint64
	fn func(old, new V)
}

// OnEffectiveValueChanged subscribes to transitions of the effective
// value. Handlers run synchronously inside the mutating call, in
// subscription order, before the call returns. The returned cancel is
// idempotent.
func (l *PriorityList[P, V]) OnEffectiveValueChanged(fn func(old, new V)) (cancel func()) {
	l.nextID++
	id := l.nextID
	l.subsE = append(l.subsE, subscriber[V]{id, fn})
	return func() {
		l.subsE = drop(l.subsE, id)
	}
}

// OnDefaultValueChanged subscribes to changes of the default value, with
// the same dispatch contract as OnEffectiveValueChanged.
func (l *PriorityList[P, V]) OnDefaultValueChanged(fn func(old, new V)) (cancel func()) {
	l.nextID++
	id := l.nextID
	l.subsD = append(l.subsD, subscriber[V]{id, fn})
	return func() {
		l.subsD = drop(l.subsD, id)
	}
}

func drop[V any](subs []subscriber[V], id uint64) []subscriber[V] {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

func (l *PriorityList[P, V]) notifyEffective(old, new V) {
	// 遍历副本，允许处理函数退订
	subs := make([]subscriber[V], len(l.subsE))
	copy(subs, l.subsE)
	for _, s := range subs {
		s.fn(old, new)
	}
}

func (l *PriorityList[P, V]) notifyDefault(old, new V) {
	subs := make([]subscriber[V], len(l.subsD))
	copy(subs, l.subsD)
	for _, s := range subs {
		s.fn(old, new)
	}
}
