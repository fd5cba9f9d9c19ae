package store

import (
	"bwtoolkit/utils/sets"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoSuchKey = errors.New("no such key exists")
	ErrKeyExists = errors.New("key already exists")
)

// What every store exposes regardless of its value type, so a database can flush them together.
type IStore interface {
	CleanPath() string
	WriteSnapshot() error
	LoadFromFile() error
}

type StoreKey = string
type StoreData[T any] map[StoreKey]T

// A persistent in-memory map backed by a JSON file.
//
// The file is read once when the store is created. After that every operation is in-memory
// and WriteSnapshot persists the current state. Safe for concurrent use.
type Store[T any] struct {
	filePath string
	data     StoreData[T]
	mu       sync.RWMutex
}

// Creates a store backed by the JSON file at path, loading it if it exists.
func New[T any](path string) (*Store[T], error) {
	s := &Store[T]{
		filePath: path,
		data:     make(StoreData[T]),
	}

	if err := s.LoadFromFile(); err != nil {
		return nil, fmt.Errorf("failed to load store from file: %w", err)
	}

	if !s.IsEmpty() {
		log.WithFields(log.Fields{"path": s.CleanPath(), "count": s.Count()}).Debug("loaded store from file")
	}

	return s, nil
}

func (s *Store[T]) CleanPath() string {
	return filepath.Clean(s.filePath)
}

// All keys in ascending order.
func (s *Store[T]) Keys() []StoreKey {
	s.mu.RLock()
	keys := lo.Keys(s.data)
	s.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

func (s *Store[T]) ValuesSorted(cmp func(a, b T) int) []T {
	s.mu.RLock()
	values := lo.Values(s.data)
	s.mu.RUnlock()

	slices.SortFunc(values, cmp)
	return values
}

func (s *Store[T]) IsEmpty() bool {
	return s.Count() == 0
}

func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

func (s *Store[T]) HasKey(key StoreKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[key]
	return ok
}

// Creates or overwrites the value at key.
func (s *Store[T]) Set(key StoreKey, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
}

// Like Set, but fails with ErrKeyExists instead of overwriting.
func (s *Store[T]) Insert(key StoreKey, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		return fmt.Errorf("%w: '%s' in store %s", ErrKeyExists, key, s.CleanPath())
	}

	s.data[key] = value
	return nil
}

// Deletes the value at key, reporting whether there was one.
func (s *Store[T]) Delete(key StoreKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.data[key]
	delete(s.data, key)

	return ok
}

// Keys are case-sensitive. Lower them first if the store is keyed insensitively.
func (s *Store[T]) Get(key StoreKey) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.data[key]; ok {
		return &v, nil
	}

	return nil, fmt.Errorf("%w: '%s' in store %s", ErrNoSuchKey, key, s.CleanPath())
}

// Values for every key in set that exists in the store. Missing keys are skipped.
func (s *Store[T]) GetFromSet(set sets.Set[StoreKey]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.FilterMap(set.Keys(), func(k StoreKey, _ int) (T, bool) {
		v, ok := s.data[k]
		return v, ok
	})
}

// All values passing the predicate, in no particular order.
func (s *Store[T]) FindAll(predicate func(value T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(lo.Values(s.data), func(v T, _ int) bool {
		return predicate(v)
	})
}

// Replaces the in-memory state with the contents of the backing file.
// A missing file leaves the store empty.
func (s *Store[T]) LoadFromFile() error {
	contents, err := os.ReadFile(s.CleanPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	data := make(StoreData[T])
	if err := json.Unmarshal(contents, &data); err != nil {
		return fmt.Errorf("error parsing store file %s: %w", s.CleanPath(), err)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	return nil
}

// Writes the current state to the backing file.
// The file is replaced atomically via a temp file, so readers never see a partial write.
func (s *Store[T]) WriteSnapshot() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("error writing store snapshot to %s: %w", s.filePath, err)
	}

	return nil
}
