package snapshot

import (
	"github.com/wecisecode/collections/dmap"
	"github.com/wecisecode/collections/errs"
	"github.com/wecisecode/collections/logger"
	"github.com/wecisecode/collections/plist"
)

// SaveMap encodes the current state of m and stores it under name.
func SaveMap[K dmap.Enum[K], V any](store Store, codec Codec, name string, m *dmap.DefaultedMap[K, V]) error {
	bs, err := codec.Marshal(m.Snapshot())
	if err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	if err := store.Save(name, bs); err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	return nil
}

// LoadMap restores m from the state stored under name. A key stored more
// than once is an anomaly, it is logged and the last value wins. Entry
// keys outside the domain of m reject the whole snapshot and leave m
// untouched.
func LoadMap[K dmap.Enum[K], V any](store Store, codec Codec, name string, m *dmap.DefaultedMap[K, V]) error {
	bs, err := store.Load(name)
	if err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	var st dmap.State[K, V]
	if err := codec.Unmarshal(bs, &st); err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	seen := make(map[K]bool, len(st.Entries))
	for _, e := range st.Entries {
		if seen[e.Key] {
			logger.Warnf("snapshot %s holds key %v more than once, the last value wins", name, e.Key)
		}
		seen[e.Key] = true
	}
	if err := m.Restore(st); err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	return nil
}

// SaveList encodes the current state of l and stores it under name.
func SaveList[P, V any](store Store, codec Codec, name string, l *plist.PriorityList[P, V]) error {
	bs, err := codec.Marshal(l.Snapshot())
	if err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	if err := store.Save(name, bs); err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	return nil
}

// LoadList restores l from the state stored under name. The stored order
// does not matter, Restore re-sorts.
func LoadList[P, V any](store Store, codec Codec, name string, l *plist.PriorityList[P, V]) error {
	bs, err := store.Load(name)
	if err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	var st plist.State[P, V]
	if err := codec.Unmarshal(bs, &st); err != nil {
		return errs.SnapshotError.Wrap(err)
	}
	l.Restore(st)
	return nil
}

// AutoReloadMap restores m from the stored snapshot now and again after
// every observed change of name, until cancel is called. A failing reload
// is logged and keeps the current content, a snapshot that does not exist
// yet is not an error.
//
// Reloads run on the store's watch goroutine. The map is a single owner
// container, the caller must not work with it concurrently without
// serializing against the reloads externally. The onApplied callbacks run
// after every reload attempt with its error, on the goroutine that
// performed it, they are the place to coordinate with the owner.
func AutoReloadMap[K dmap.Enum[K], V any](store Store, codec Codec, name string, m *dmap.DefaultedMap[K, V], onApplied ...func(err error)) (cancel func(), err error) {
	return autoReload(store, name, func() error { return LoadMap(store, codec, name, m) }, onApplied)
}

// AutoReloadList restores l from the stored snapshot now and again after
// every observed change of name, with the same contract as AutoReloadMap.
func AutoReloadList[P, V any](store Store, codec Codec, name string, l *plist.PriorityList[P, V], onApplied ...func(err error)) (cancel func(), err error) {
	return autoReload(store, name, func() error { return LoadList(store, codec, name, l) }, onApplied)
}

func autoReload(store Store, name string, reload func() error, onApplied []func(err error)) (cancel func(), err error) {
	apply := func() {
		err := reload()
		if err != nil {
			if IsNotFound(err) {
				logger.Debugf("no snapshot stored under %s", name)
			} else {
				// 读取或解码失败时保留当前内容
				logger.Errorf("load snapshot %s error: %v", name, err)
			}
		}
		for _, fn := range onApplied {
			fn(err)
		}
	}
	apply()
	return store.Watch(name, apply)
}
