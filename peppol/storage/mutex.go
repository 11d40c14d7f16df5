package storage

import "sync"

// keyedMutex hands out one mutex per key. Entries live as long as the
// owning store, which already retains a record per key anyway.
type keyedMutex[K comparable] struct {
	table sync.Map // map[K]*sync.Mutex
}

func (m *keyedMutex[K]) Lock(key K) {
	v, _ := m.table.LoadOrStore(key, &sync.Mutex{})
	v.(*sync.Mutex).Lock()
}

func (m *keyedMutex[K]) Unlock(key K) {
	v, ok := m.table.Load(key)
	if !ok {
		panic("unlock of untracked key")
	}
	v.(*sync.Mutex).Unlock()
}
