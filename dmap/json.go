package dmap

import (
	"encoding/json"
)

func (m *DefaultedMap[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// UnmarshalJSON restores the map from its snapshot shape. The receiver
// must have been built with New so the key domain is known.
func (m *DefaultedMap[K, V]) UnmarshalJSON(b []byte) error {
	var st State[K, V]
	if err := json.Unmarshal(b, &st); err != nil {
		return err
	}
	return m.Restore(st)
}

func (m *DefaultedMap[K, V]) String() string {
	bs, _ := json.Marshal(m)
	return string(bs)
}
