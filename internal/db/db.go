// Package db keeps a history of decode runs in a BoltDB file.
package db

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"unhex/internal/convert"
	"unhex/internal/rec"
)

var (
	bucketRuns = []byte("runs")
)

type Config struct {
	File string `yaml:"file"`
}

var db *bbolt.DB

func Open(config Config) {
	if db != nil {
		panic("db: already opened")
	}
	if config.File == "" {
		panic("db: file is required")
	}

	err := os.MkdirAll(filepath.Dir(config.File), 0755)
	if err != nil {
		panic(fmt.Errorf("db: create db dir: %w", err))
	}

	db, err = bbolt.Open(config.File, 0600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		panic(fmt.Errorf("db: open bbolt db: %w", err))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{
			bucketRuns,
		} {
			_, err := tx.CreateBucketIfNotExists(bucket)
			if err != nil {
				return fmt.Errorf("create bucket %q: %w", bucket, err)
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		db = nil
		panic(fmt.Errorf("db: initialize buckets: %w", err))
	}
}

func Close() error {
	if db == nil {
		panic("db: not opened")
	}

	err := db.Close()
	if err != nil {
		return fmt.Errorf("db: close bbolt db: %w", err)
	}
	db = nil
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func Closer() io.Closer {
	return closerFunc(Close)
}

// Run is one file conversion.
type Run struct {
	ID       uint64        `json:"-"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Input    string        `json:"input"`
	Output   string        `json:"output"`
	Stats    convert.Stats `json:"stats"`
	Error    string        `json:"error,omitempty"`
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Errorf("db: must: %w", err))
	}
	return v
}

func key(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

// AddRun stores run and returns its id. Ids increase with every run.
func AddRun(run Run) (id uint64, err error) {
	defer rec.Wrap(&err, "db: add run: %w")

	if db == nil {
		panic("db: not opened")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}

		id, err = b.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}

		return b.Put(key(id), must(json.Marshal(run)))
	})
	return id, err
}

var errStop = fmt.Errorf("stop iteration")

// Runs iterates over all runs, oldest first.
func Runs() iter.Seq[Run] {
	if db == nil {
		panic("db: not opened")
	}

	return func(yield func(Run) bool) {
		err := db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketRuns)
			if b == nil {
				return fmt.Errorf("db: runs bucket not found")
			}

			return b.ForEach(func(k, v []byte) error {
				var run Run
				err := json.Unmarshal(v, &run)
				if err != nil {
					return fmt.Errorf("db: unmarshal run %x: %w", k, err)
				}
				run.ID = binary.BigEndian.Uint64(k)

				if !yield(run) {
					return errStop
				}
				return nil
			})
		})

		if err != nil {
			if errors.Is(err, errStop) {
				return
			}
			panic(fmt.Errorf("db: get all runs: %w", err))
		}
	}
}

// LastRuns returns up to n most recent runs, newest first.
func LastRuns(n int) (runs []Run, err error) {
	defer rec.Wrap(&err, "db: last runs: %w")

	if db == nil {
		panic("db: not opened")
	}
	if n <= 0 {
		return nil, nil
	}

	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(runs) < n; k, v = c.Prev() {
			var run Run
			err := json.Unmarshal(v, &run)
			if err != nil {
				return fmt.Errorf("unmarshal run %x: %w", k, err)
			}
			run.ID = binary.BigEndian.Uint64(k)
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}
