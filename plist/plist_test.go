package plist_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wecisecode/collections/plist"
)

type transition struct {
	old float64
	new float64
}

func TestEmptyListServesDefault(t *testing.T) {
	l := plist.New[int](1.5)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 1.5, l.EffectiveValue())
	assert.Equal(t, 1.5, l.Default())
	assert.Empty(t, l.Pairs())
}

func TestAddKeepsDescendingOrder(t *testing.T) {
	l := plist.New[int](0.0)
	l.Add(10, 1.0)
	l.Add(30, 3.0)
	l.Add(20, 2.0)

	assert.Equal(t, []plist.Pair[int, float64]{
		{Priority: 30, Value: 3.0},
		{Priority: 20, Value: 2.0},
		{Priority: 10, Value: 1.0},
	}, l.Pairs())
	assert.Equal(t, 3.0, l.EffectiveValue())

	got := []int{}
	l.Fetch(func(p int, v float64) bool {
		got = append(got, p)
		return true
	})
	assert.Equal(t, []int{30, 20, 10}, got)
}

func TestAddReplacesEqualPriorityInPlace(t *testing.T) {
	l := plist.New[int](0.0)
	l.Add(10, 1.0)
	l.Add(20, 2.0)
	l.Add(10, 7.0)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []plist.Pair[int, float64]{
		{Priority: 20, Value: 2.0},
		{Priority: 10, Value: 7.0},
	}, l.Pairs())

	v, ok := l.Get(10)
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)
}

func TestEffectiveValueTransitions(t *testing.T) {
	l := plist.New[int](0.0)
	events := []transition{}
	l.OnEffectiveValueChanged(func(old, new float64) {
		events = append(events, transition{old, new})
	})

	l.Add(10, 5.0)
	l.Add(20, 9.0)
	l.Add(5, 1.0)
	require.True(t, l.RemovePriority(20))

	assert.Equal(t, []transition{
		{0.0, 5.0},
		{5.0, 9.0},
		{9.0, 5.0},
	}, events)
	assert.Equal(t, 5.0, l.EffectiveValue())
}

func TestReplaceTopNotifies(t *testing.T) {
	l := plist.New[int](0.0)
	l.Add(10, 5.0)
	l.Add(20, 9.0)

	events := []transition{}
	l.OnEffectiveValueChanged(func(old, new float64) {
		events = append(events, transition{old, new})
	})

	l.Add(10, 4.0)
	assert.Empty(t, events, "replacing below the top is silent")

	l.Add(20, 7.0)
	assert.Equal(t, []transition{{9.0, 7.0}}, events)
}

func TestRemoveValueNotifiesOnTransition(t *testing.T) {
	l := plist.New[int](0.0)
	l.Add(20, 9.0)
	l.Add(10, 5.0)
	l.Add(5, 5.0)

	events := []transition{}
	l.OnEffectiveValueChanged(func(old, new float64) {
		events = append(events, transition{old, new})
	})

	require.True(t, l.RemoveValue(5.0))
	assert.False(t, l.Has(10), "the highest matching pair goes first")
	assert.True(t, l.Has(5))
	assert.Empty(t, events)

	require.True(t, l.RemoveValue(9.0))
	assert.Equal(t, []transition{{9.0, 5.0}}, events)

	assert.False(t, l.RemoveValue(42.0))
	assert.Equal(t, 1, len(events))
}

func TestClearNotifiesOnTransition(t *testing.T) {
	l := plist.New[int](0.0)
	l.Add(20, 9.0)
	l.Add(10, 5.0)

	events := []transition{}
	l.OnEffectiveValueChanged(func(old, new float64) {
		events = append(events, transition{old, new})
	})

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, []transition{{9.0, 0.0}}, events)

	l.Clear()
	assert.Equal(t, 1, len(events), "clearing an empty list is silent")
}

func TestClearSilentWhenTopMatchesDefault(t *testing.T) {
	l := plist.New[int](9.0)
	l.Add(20, 9.0)

	events := []transition{}
	l.OnEffectiveValueChanged(func(old, new float64) {
		events = append(events, transition{old, new})
	})

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, events)
}

func TestSetDefault(t *testing.T) {
	l := plist.New[int](0.0)
	events := []string{}
	l.OnDefaultValueChanged(func(old, new float64) {
		events = append(events, fmt.Sprintf("default %v->%v", old, new))
	})
	l.OnEffectiveValueChanged(func(old, new float64) {
		events = append(events, fmt.Sprintf("effective %v->%v", old, new))
	})

	l.SetDefault(3.0)
	assert.Equal(t, []string{"default 0->3", "effective 0->3"},
		events, "while empty the default is the effective value")

	events = events[:0]
	l.Add(10, 7.0)
	assert.Equal(t, []string{"effective 3->7"}, events)

	events = events[:0]
	l.SetDefault(4.0)
	assert.Equal(t, []string{"default 3->4"},
		events, "a pair shadows the default, no effective transition")

	events = events[:0]
	l.SetDefault(4.0)
	assert.Empty(t, events, "equal default is a no-op")
}

func TestUnsubscribe(t *testing.T) {
	l := plist.New[int](0.0)
	a, b := 0, 0
	cancelA := l.OnEffectiveValueChanged(func(_, _ float64) { a++ })
	l.OnEffectiveValueChanged(func(_, _ float64) { b++ })

	l.Add(1, 1.0)
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	cancelA()
	cancelA()
	l.Add(2, 2.0)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestSnapshotRestore(t *testing.T) {
	l := plist.New[int](1.0)
	l.Add(10, 2.0)

	defEvents := []transition{}
	effEvents := []transition{}
	l.OnDefaultValueChanged(func(old, new float64) {
		defEvents = append(defEvents, transition{old, new})
	})
	l.OnEffectiveValueChanged(func(old, new float64) {
		effEvents = append(effEvents, transition{old, new})
	})

	// scrambled order and a duplicate priority
	l.Restore(plist.State[int, float64]{
		Default: 3.0,
		List: []plist.Pair[int, float64]{
			{Priority: 5, Value: 8.0},
			{Priority: 20, Value: 6.0},
			{Priority: 5, Value: 4.0},
		},
	})

	assert.Equal(t, []plist.Pair[int, float64]{
		{Priority: 20, Value: 6.0},
		{Priority: 5, Value: 4.0},
	}, l.Pairs(), "re-sorted, duplicate priority collapsed to its last value")
	assert.Equal(t, 3.0, l.Default())
	assert.Equal(t, []transition{{1.0, 3.0}}, defEvents)
	assert.Equal(t, []transition{{2.0, 6.0}}, effEvents)
}

func TestJSONRoundTrip(t *testing.T) {
	l := plist.New[int](1.5)
	l.Add(3, 2.5)

	assert.JSONEq(t, `{"defaultValue":1.5,"list":[{"priority":3,"value":2.5}]}`, l.String())

	n := plist.New[int](0.0)
	require.NoError(t, n.UnmarshalJSON([]byte(l.String())))
	assert.Equal(t, 1.5, n.Default())
	assert.Equal(t, 2.5, n.EffectiveValue())
	assert.Equal(t, 1, n.Len())
}

func TestCustomComparer(t *testing.T) {
	// order priorities by string length
	l := plist.NewCmp(0, func(a, b string) int { return len(a) - len(b) })
	l.Add("a", 1)
	l.Add("aaa", 3)
	l.Add("bb", 2)
	assert.Equal(t, 3, l.EffectiveValue())

	// the equality comparer defaults to the ordering comparer
	assert.True(t, l.Has("cc"))
	l.Add("cc", 9)
	v, ok := l.Get("bb")
	assert.True(t, ok)
	assert.Equal(t, 9, v)
	assert.Equal(t, 3, l.Len())
}

func TestCustomPriorityEquality(t *testing.T) {
	l := plist.NewCmp(0, func(a, b string) int { return len(a) - len(b) },
		plist.WithPriorityEquals[string, int](func(a, b string) bool { return a == b }))
	l.Add("bb", 2)
	l.Add("cc", 9)

	assert.Equal(t, 2, l.Len(), "same length but different keys stay distinct")
	assert.False(t, l.Has("dd"))
}

func TestClone(t *testing.T) {
	l := plist.New[int](0.0)
	l.Add(1, 5.0)
	fired := false
	l.OnEffectiveValueChanged(func(_, _ float64) { fired = true })

	c := l.Clone()
	c.Add(2, 9.0)

	assert.False(t, fired, "subscriptions stay with the original")
	assert.Equal(t, 9.0, c.EffectiveValue())
	assert.Equal(t, 5.0, l.EffectiveValue())
}
