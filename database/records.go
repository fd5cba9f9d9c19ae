package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrNoRecords = errors.New("no records found")

// Builds a lower-cased record prefix from its parts, e.g. RecordPrefix("records", "players", "Vex") = "records/players/vex/".
// Each part is path-escaped, so a part containing "/" can never reach into another part's records.
func RecordPrefix(parts ...string) string {
	escaped := lo.Map(parts, func(p string, _ int) string {
		return url.PathEscape(strings.ToLower(p))
	})

	return strings.Join(escaped, "/") + "/"
}

// Keys end in zero-padded unix nanos so that byte order equals time order.
func RecordKey(prefix string, at time.Time) []byte {
	return fmt.Appendf(nil, "%s%020d", prefix, max(at.UnixNano(), 0))
}

// Appends v at the key for prefix and time, msgpack encoded.
func PutRecord[T any](db *badger.DB, prefix string, at time.Time, v T) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding record under %s: %w", prefix, err)
	}

	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(RecordKey(prefix, at), data)
	})
}

func decodeRecord[T any](item *badger.Item) (T, error) {
	var out T
	err := item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &out)
	})

	if err != nil {
		return out, fmt.Errorf("error decoding record %s: %w", item.Key(), err)
	}

	return out, nil
}

// All records under prefix, oldest first.
func ListRecords[T any](db *badger.DB, prefix string) ([]T, error) {
	out := []T{}
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 64, Prefix: []byte(prefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			v, err := decodeRecord[T](it.Item())
			if err != nil {
				return err
			}

			out = append(out, v)
		}

		return nil
	})

	return out, err
}

// The newest record under prefix, or ErrNoRecords.
func LatestRecord[T any](db *badger.DB, prefix string) (*T, error) {
	var out *T
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Reverse: true, Prefix: []byte(prefix)})
		defer it.Close()

		// Reverse iteration seeks to the greatest key <= the seek key, so seek past every suffix.
		it.Seek(append([]byte(prefix), 0xFF))
		if !it.Valid() {
			return fmt.Errorf("%w under %s", ErrNoRecords, prefix)
		}

		v, err := decodeRecord[T](it.Item())
		if err != nil {
			return err
		}

		out = &v
		return nil
	})

	return out, err
}

func CountRecords(db *badger.DB, prefix string) (count int, err error) {
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}

		return nil
	})

	return
}

// Removes every record under prefix.
func DeleteRecords(db *badger.DB, prefix string) error {
	return db.DropPrefix([]byte(prefix))
}
