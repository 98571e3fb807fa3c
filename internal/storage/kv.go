package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Change describes a value written by another observer of the same store.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// KV is a key-value store shared by several observers. Subscribers are told
// about writes made through other handles, never about their own.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Subscribe(buffer int) <-chan Change
	Close() error
}

// observers fans changes out to subscriber channels without blocking.
type observers struct {
	channels []chan Change
}

func (obs *observers) add(buffer int) <-chan Change {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Change, buffer)
	obs.channels = append(obs.channels, ch)
	return ch
}

func (obs *observers) emit(change Change) {
	for _, ch := range obs.channels {
		select {
		case ch <- change:
		default:
		}
	}
}

func (obs *observers) close() {
	for _, ch := range obs.channels {
		close(ch)
	}
	obs.channels = nil
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	return append([]byte(nil), value...)
}
