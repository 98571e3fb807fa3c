package main

import (
	"log"

	"podium/internal/storage"
)

// backend opens one key-value handle per window. Every handle shares the
// SQLite file, or the in-process hub once SQLite is unavailable.
type backend struct {
	path string
	hub  *storage.MemoryHub
}

func newBackend(path string) *backend {
	if path != "" {
		return &backend{path: path}
	}
	defaultPath, err := storage.DefaultDBPath(appName)
	if err != nil {
		log.Printf("resolve slot store path: %v; using memory", err)
		return &backend{hub: storage.NewMemoryHub()}
	}
	return &backend{path: defaultPath}
}

func (stores *backend) useMemory() {
	if stores.hub == nil {
		stores.hub = storage.NewMemoryHub()
	}
}

func (stores *backend) open() (storage.KV, error) {
	if stores.hub != nil {
		return stores.hub.Open(), nil
	}
	kv, err := storage.OpenSQLite(stores.path)
	if err != nil {
		return nil, err
	}
	if err := kv.Watch(); err != nil {
		log.Printf("watch %s: %v", stores.path, err)
	}
	return kv, nil
}
