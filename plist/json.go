package plist

import (
	"encoding/json"
)

func (l *PriorityList[P, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Snapshot())
}

// UnmarshalJSON restores the list from its snapshot shape. The receiver
// must have been built with New or NewCmp so the comparers are set.
func (l *PriorityList[P, V]) UnmarshalJSON(b []byte) error {
	var st State[P, V]
	if err := json.Unmarshal(b, &st); err != nil {
		return err
	}
	l.Restore(st)
	return nil
}

func (l *PriorityList[P, V]) String() string {
	bs, _ := json.Marshal(l)
	return string(bs)
}
