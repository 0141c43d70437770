// Package storage is the record and key-value store reachable from
// component bodies.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	ErrStoreClosed    = errors.New("storage is closed")
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidKey     = errors.New("storage key is required")
)

const defaultName = "plasma"

type Options struct {
	// Path of the database file. Empty selects the XDG data dir when
	// Persistent is set and an ephemeral temp file otherwise.
	Path       string
	Persistent bool
	// Name of the database file under the XDG data dir.
	Name string
}

// Record is one stored record.
type Record struct {
	ID        uint64         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Flatten returns the record data merged with its id and creation time.
func (r Record) Flatten() map[string]any {
	out := make(map[string]any, len(r.Data)+2)
	for key, value := range r.Data {
		out[key] = value
	}
	out["id"] = r.ID
	out["created_at"] = r.CreatedAt
	return out
}

type setting struct {
	Group     string         `json:"group"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Store struct {
	mu        sync.RWMutex
	db        *bolt.DB
	path      string
	ephemeral bool
	closed    bool
	logger    *zap.Logger
	now       func() time.Time
}

// ResolvePath returns the database path Open would use, or "" for an
// ephemeral store.
func ResolvePath(opts Options) (string, error) {
	if path := strings.TrimSpace(opts.Path); path != "" {
		return path, nil
	}
	if !opts.Persistent {
		return "", nil
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = defaultName
	}
	path, err := xdg.DataFile(filepath.Join(defaultName, name+".db"))
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return path, nil
}

func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := ResolvePath(opts)
	if err != nil {
		return nil, err
	}
	ephemeral := path == ""
	if ephemeral {
		file, err := os.CreateTemp("", "plasma-*.db")
		if err != nil {
			return nil, fmt.Errorf("create ephemeral storage: %w", err)
		}
		path = file.Name()
		_ = file.Close()
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure storage dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger = logger.Named("storage")
	logger.Debug("storage opened", zap.String("path", path), zap.Bool("ephemeral", ephemeral))
	return &Store{
		db:        db,
		path:      path,
		ephemeral: ephemeral,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Close closes the database and removes it when ephemeral.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.db.Close()
	if s.ephemeral {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("remove ephemeral storage failed", zap.String("path", s.path), zap.Error(rmErr))
		}
	}
	return err
}

// AddRecord stores fields as a new record with the next sequential id.
func (s *Store) AddRecord(fields map[string]any) (Record, error) {
	data, err := normalize(fields)
	if err != nil {
		return Record{}, err
	}
	var record Record
	err = s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(recordsBucketName))
		id, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("next record id: %w", err)
		}
		now := s.now()
		record = Record{ID: id, Data: data, CreatedAt: now, UpdatedAt: now}
		return putJSON(bucket, itob(id), record)
	})
	return record, err
}

// FindRecords returns every record in id order, flattened.
func (s *Store) FindRecords() ([]map[string]any, error) {
	return s.findRecords(func(Record) bool { return true })
}

// FindRecordsByField returns records whose field equals value after JSON
// normalisation, so 42 matches a stored 42.0.
func (s *Store) FindRecordsByField(field string, value any) ([]map[string]any, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s filter: %w", field, err)
	}
	return s.findRecords(func(r Record) bool {
		got, ok := r.Data[field]
		if !ok {
			return false
		}
		raw, err := json.Marshal(got)
		return err == nil && bytes.Equal(raw, want)
	})
}

// FindRecordsWithField returns records that carry field at all.
func (s *Store) FindRecordsWithField(field string) ([]map[string]any, error) {
	return s.findRecords(func(r Record) bool {
		_, ok := r.Data[field]
		return ok
	})
}

// Record returns the record with id.
func (s *Store) Record(id uint64) (Record, error) {
	var record Record
	err := s.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(recordsBucketName)).Get(itob(id))
		if raw == nil {
			return fmt.Errorf("record %d: %w", id, ErrRecordNotFound)
		}
		return json.Unmarshal(raw, &record)
	})
	return record, err
}

func (s *Store) UpdateRecordField(id uint64, field string, value any) error {
	if strings.TrimSpace(field) == "" {
		return ErrInvalidKey
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(recordsBucketName))
		raw := bucket.Get(itob(id))
		if raw == nil {
			return fmt.Errorf("record %d: %w", id, ErrRecordNotFound)
		}
		var record Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("decode record %d: %w", id, err)
		}
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data[field] = normalized
		record.UpdatedAt = s.now()
		return putJSON(bucket, itob(id), record)
	})
}

// SetVar stores value under key. Strings holding JSON are stored decoded.
func (s *Store) SetVar(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if text, ok := value.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			value = decoded
		}
	}
	return s.update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket([]byte(variablesBucketName)), []byte(key), value)
	})
}

// GetVar returns the value stored under key and whether it exists.
func (s *Store) GetVar(key string) (any, bool, error) {
	var (
		value any
		found bool
	)
	err := s.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(variablesBucketName)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &value)
	})
	return value, found, err
}

// UpdateVar replaces the value under key with fn(current) in one
// transaction. found reports whether key existed.
func (s *Store) UpdateVar(key string, fn func(current any, found bool) (any, error)) (any, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidKey
	}
	var next any
	err := s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(variablesBucketName))
		var current any
		raw := bucket.Get([]byte(key))
		if raw != nil {
			if err := json.Unmarshal(raw, &current); err != nil {
				return fmt.Errorf("decode variable %s: %w", key, err)
			}
		}
		value, err := fn(current, raw != nil)
		if err != nil {
			return err
		}
		if next, err = normalizeValue(value); err != nil {
			return err
		}
		return putJSON(bucket, []byte(key), next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Variables returns every stored variable.
func (s *Store) Variables() (map[string]any, error) {
	out := map[string]any{}
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(variablesBucketName)).ForEach(func(key, raw []byte) error {
			var value any
			if err := json.Unmarshal(raw, &value); err != nil {
				return fmt.Errorf("decode variable %s: %w", key, err)
			}
			out[string(key)] = value
			return nil
		})
	})
	return out, err
}

// SetSetting replaces the settings of group.
func (s *Store) SetSetting(group string, data map[string]any) error {
	if strings.TrimSpace(group) == "" {
		return ErrInvalidKey
	}
	normalized, err := normalize(data)
	if err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(settingsBucketName))
		now := s.now()
		entry := setting{Group: group, Data: normalized, CreatedAt: now, UpdatedAt: now}
		if raw := bucket.Get([]byte(group)); raw != nil {
			var prev setting
			if err := json.Unmarshal(raw, &prev); err == nil {
				entry.CreatedAt = prev.CreatedAt
			}
		}
		return putJSON(bucket, []byte(group), entry)
	})
}

func (s *Store) Setting(group string) (map[string]any, bool, error) {
	var (
		entry setting
		found bool
	)
	err := s.view(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(settingsBucketName)).Get([]byte(group))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &entry)
	})
	return entry.Data, found, err
}

// DumpJSON renders records and variables as one JSON document.
func (s *Store) DumpJSON() ([]byte, error) {
	records, err := s.FindRecords()
	if err != nil {
		return nil, err
	}
	variables, err := s.Variables()
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Records   []map[string]any `json:"records"`
		Variables map[string]any   `json:"variables"`
	}{Records: records, Variables: variables})
}

func (s *Store) findRecords(match func(Record) bool) ([]map[string]any, error) {
	out := []map[string]any{}
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(recordsBucketName)).ForEach(func(key, raw []byte) error {
			var record Record
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("decode record %x: %w", key, err)
			}
			if match(record) {
				out = append(out, record.Flatten())
			}
			return nil
		})
	})
	return out, err
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}

func putJSON(bucket *bolt.Bucket, key []byte, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return bucket.Put(key, raw)
}

// normalize round-trips fields through JSON so stored and returned values
// have the same shape.
func normalize(fields map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if len(fields) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode record data: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode record data: %w", err)
	}
	return out, nil
}

func normalizeValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}
