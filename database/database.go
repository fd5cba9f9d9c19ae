package database

import (
	"bwtoolkit/database/store"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

const RECORDS_DIR = "records"

type StoreDefinition[T any] struct {
	Name string
}

// Owns the JSON stores and the badger record DB that live under one data directory.
//
// JSON stores hold small, frequently rewritten state. Append-only history goes to badger.
type Database struct {
	dirPath string
	stores  map[string]store.IStore
	records *badger.DB
	storeMu sync.RWMutex
	flushMu sync.Mutex
}

// Badger options tuned for small, append-mostly datasets.
func recordOptions(dir string) badger.Options {
	opts := badger.DefaultOptions(dir)
	opts.ZSTDCompressionLevel = 2
	opts.NumLevelZeroTables = 1
	opts.NumVersionsToKeep = 1
	opts.CompactL0OnClose = true
	opts.Logger = badgerLogger{log.WithField("component", "badger")}

	return opts
}

// Opens (or creates) the data directory at dir along with its record DB.
func Open(dir string) (*Database, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	records, err := badger.Open(recordOptions(filepath.Join(dir, RECORDS_DIR)))
	if err != nil {
		return nil, fmt.Errorf("failed to open record db in %s: %w", dir, err)
	}

	return &Database{
		dirPath: dir,
		stores:  make(map[string]store.IStore),
		records: records,
	}, nil
}

func (db *Database) Dir() string {
	return filepath.Clean(db.dirPath)
}

func (db *Database) Records() *badger.DB {
	return db.records
}

// Returns the store for def, creating it from <dir>/<name>.json on first use.
func AssignStore[T any](db *Database, def StoreDefinition[T]) (*store.Store[T], error) {
	db.storeMu.Lock()
	defer db.storeMu.Unlock()

	if existing, ok := db.stores[def.Name]; ok {
		s, ok := existing.(*store.Store[T])
		if !ok {
			return nil, fmt.Errorf("store '%s' exists with a different type: %T", def.Name, existing)
		}

		return s, nil
	}

	s, err := store.New[T](filepath.Join(db.dirPath, def.Name+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to create store '%s': %w", def.Name, err)
	}

	db.stores[def.Name] = s
	return s, nil
}

// Writes a snapshot of every store. Only one flush runs at a time.
func (db *Database) Flush() error {
	db.flushMu.Lock()
	defer db.flushMu.Unlock()

	db.storeMu.RLock()
	defer db.storeMu.RUnlock()

	errs := []error{}
	for name, s := range db.stores {
		if err := s.WriteSnapshot(); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	log.WithField("dir", db.Dir()).Debug("flushed all stores to disk")
	return nil
}

// Flushes every store and closes the record DB.
func (db *Database) Close() error {
	return errors.Join(db.Flush(), db.records.Close())
}

// Adapts logrus to badger's logger interface. Badger's info chatter is demoted to debug.
type badgerLogger struct {
	entry *log.Entry
}

func (l badgerLogger) Errorf(f string, args ...any)   { l.entry.Errorf(f, args...) }
func (l badgerLogger) Warningf(f string, args ...any) { l.entry.Warnf(f, args...) }
func (l badgerLogger) Infof(f string, args ...any)    { l.entry.Debugf(f, args...) }
func (l badgerLogger) Debugf(f string, args ...any)   { l.entry.Tracef(f, args...) }
