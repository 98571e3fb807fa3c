package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// SQLiteKV is a key-value store backed by a SQLite file. Several handles,
// possibly in different processes, can share one file; Watch turns writes made
// by other handles into Change notifications.
type SQLiteKV struct {
	db   *sql.DB
	path string

	mu        sync.Mutex
	known     map[string]knownValue
	observers observers
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	doneCh    chan struct{}
	closed    bool
}

// knownValue is the last value this handle read or wrote for a key.
type knownValue struct {
	value   []byte
	present bool
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLiteKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	kv := &SQLiteKV{
		db:    db,
		path:  path,
		known: make(map[string]knownValue),
	}
	if err := kv.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return kv, nil
}

func (kv *SQLiteKV) migrate() error {
	var version int
	if err := kv.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);`
	if _, err := kv.db.Exec(ddl); err != nil {
		return err
	}
	_, err := kv.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

// Path returns the database file location.
func (kv *SQLiteKV) Path() string {
	return kv.path
}

func (kv *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.closed {
		return nil, false, ErrClosed
	}

	value, present, err := kv.readLocked(ctx, key)
	if err != nil {
		return nil, false, err
	}
	kv.known[key] = knownValue{value: cloneBytes(value), present: present}
	return value, present, nil
}

func (kv *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.closed {
		return ErrClosed
	}
	if value == nil {
		value = []byte{}
	}

	_, err := kv.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	kv.known[key] = knownValue{value: cloneBytes(value), present: true}
	return nil
}

func (kv *SQLiteKV) Delete(ctx context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.closed {
		return ErrClosed
	}

	if _, err := kv.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	kv.known[key] = knownValue{}
	return nil
}

func (kv *SQLiteKV) Subscribe(buffer int) <-chan Change {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.observers.add(buffer)
}

// Watch starts watching the database files for writes made by other handles.
// Only keys this handle has already read or written are reported.
func (kv *SQLiteKV) Watch() error {
	kv.mu.Lock()
	if kv.closed {
		kv.mu.Unlock()
		return ErrClosed
	}
	if kv.watcher != nil {
		kv.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		kv.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(kv.path)); err != nil {
		watcher.Close()
		kv.mu.Unlock()
		return fmt.Errorf("watch %s: %w", filepath.Dir(kv.path), err)
	}
	kv.watcher = watcher
	kv.stopCh = make(chan struct{})
	kv.doneCh = make(chan struct{})
	kv.mu.Unlock()

	go kv.watch(watcher, kv.stopCh, kv.doneCh)
	return nil
}

func (kv *SQLiteKV) watch(watcher *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	base := filepath.Base(kv.path)

	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := kv.poll(ctx); err != nil && !errors.Is(err, ErrClosed) {
				log.Printf("storage: poll %s: %v", kv.path, err)
			}
			cancel()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("storage: watcher: %v", err)
		}
	}
}

// poll re-reads every known key and reports values that differ from the last
// value this handle saw.
func (kv *SQLiteKV) poll(ctx context.Context) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.closed {
		return ErrClosed
	}

	for key, last := range kv.known {
		value, present, err := kv.readLocked(ctx, key)
		if err != nil {
			return err
		}
		if present == last.present && bytes.Equal(value, last.value) {
			continue
		}
		kv.known[key] = knownValue{value: cloneBytes(value), present: present}
		kv.observers.emit(Change{Key: key, Value: value, Deleted: !present})
	}
	return nil
}

func (kv *SQLiteKV) readLocked(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := kv.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (kv *SQLiteKV) Close() error {
	kv.mu.Lock()
	if kv.closed {
		kv.mu.Unlock()
		return nil
	}
	kv.closed = true
	watcher := kv.watcher
	stopCh := kv.stopCh
	doneCh := kv.doneCh
	kv.observers.close()
	kv.mu.Unlock()

	if watcher != nil {
		close(stopCh)
		<-doneCh
		watcher.Close()
	}
	return kv.db.Close()
}

// DefaultDBPath returns <UserConfigDir>/<appName>/<appName>.db.
func DefaultDBPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	name := strings.ToLower(strings.ReplaceAll(appName, " ", "-"))
	return filepath.Join(configDir, appName, name+".db"), nil
}
