package storage

import (
	"context"
	"sync"
)

// MemoryHub is an in-process store shared by several handles, one per window.
type MemoryHub struct {
	mu      sync.Mutex
	values  map[string][]byte
	handles []*MemoryKV
}

// NewMemoryHub creates an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{values: make(map[string][]byte)}
}

// Open returns a new observer handle on the hub.
func (hub *MemoryHub) Open() *MemoryKV {
	handle := &MemoryKV{hub: hub}
	hub.mu.Lock()
	hub.handles = append(hub.handles, handle)
	hub.mu.Unlock()
	return handle
}

func (hub *MemoryHub) write(from *MemoryKV, change Change) error {
	hub.mu.Lock()
	if from.isClosed() {
		hub.mu.Unlock()
		return ErrClosed
	}
	if change.Deleted {
		delete(hub.values, change.Key)
	} else {
		hub.values[change.Key] = cloneBytes(change.Value)
	}
	others := make([]*MemoryKV, 0, len(hub.handles))
	for _, handle := range hub.handles {
		if handle != from {
			others = append(others, handle)
		}
	}
	hub.mu.Unlock()

	for _, handle := range others {
		handle.notify(Change{Key: change.Key, Value: cloneBytes(change.Value), Deleted: change.Deleted})
	}
	return nil
}

func (hub *MemoryHub) detach(handle *MemoryKV) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for i, candidate := range hub.handles {
		if candidate == handle {
			hub.handles = append(hub.handles[:i], hub.handles[i+1:]...)
			return
		}
	}
}

// MemoryKV is one observer's view of a MemoryHub.
type MemoryKV struct {
	hub *MemoryHub

	mu        sync.Mutex
	observers observers
	closed    bool
}

func (kv *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if kv.isClosed() {
		return nil, false, ErrClosed
	}
	kv.hub.mu.Lock()
	defer kv.hub.mu.Unlock()
	value, ok := kv.hub.values[key]
	return cloneBytes(value), ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	return kv.hub.write(kv, Change{Key: key, Value: value})
}

func (kv *MemoryKV) Delete(_ context.Context, key string) error {
	return kv.hub.write(kv, Change{Key: key, Deleted: true})
}

func (kv *MemoryKV) Subscribe(buffer int) <-chan Change {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.observers.add(buffer)
}

func (kv *MemoryKV) Close() error {
	kv.mu.Lock()
	if kv.closed {
		kv.mu.Unlock()
		return nil
	}
	kv.closed = true
	kv.observers.close()
	kv.mu.Unlock()

	kv.hub.detach(kv)
	return nil
}

func (kv *MemoryKV) notify(change Change) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.closed {
		return
	}
	kv.observers.emit(change)
}

func (kv *MemoryKV) isClosed() bool {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.closed
}
