package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"

	"github.com/tuannm99/novaingest/internal/alias/bx"
	"github.com/tuannm99/novaingest/internal/record"
)

var (
	ErrSchemaConflict      = errors.New("sink: columns differ from the stored table schema")
	ErrUnsupportedTimeType = errors.New("sink: timestamp column must hold integer values")
	ErrNullTimestamp       = errors.New("sink: timestamp value is null")
	ErrTableNotFound       = errors.New("sink: table not found")
)

const (
	prefixRow    = 'r'
	prefixSchema = 's'
	prefixBatch  = 'd'
)

// Options configures where the store keeps its data.
type Options struct {
	Dir      string
	InMemory bool
}

// Store persists inserted rows in Badger. A batch is written in a single
// transaction, so it either lands completely or not at all.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store.
func Open(o Options) (*Store, error) {
	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(o.Dir, "badger"))
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("sink: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Write stores every row of reqs under database. batchID identifies the
// batch; a batch already stored is skipped and reports zero rows written.
// Rows sharing table, timestamp and tag values replace each other.
func (s *Store) Write(ctx context.Context, database string, batchID uint64, reqs []*record.InsertRequest) (uint32, error) {
	var written uint32
	err := s.db.Update(func(txn *badger.Txn) error {
		bk := batchKey(database, batchID)
		if _, err := txn.Get(bk); err == nil {
			slog.Debug("sink: duplicate batch skipped", "database", database, "batch", batchID)
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		for _, r := range reqs {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := s.writeRequest(txn, database, r)
			if err != nil {
				return fmt.Errorf("table %q: %w", r.TableName(), err)
			}
			written += n
		}
		return txn.Set(bk, nil)
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (s *Store) writeRequest(txn *badger.Txn, database string, r *record.InsertRequest) (uint32, error) {
	if len(r.Columns()) == 0 {
		return 0, nil
	}

	schema, err := ensureSchema(txn, database, r)
	if err != nil {
		return 0, err
	}

	// columns in stored schema order
	cols := make([]*record.Column, schema.NumCols())
	tsIdx := -1
	for i, cs := range schema.Cols {
		c, _ := r.Column(cs.Name)
		cols[i] = c
		if cs.Semantic == record.Timestamp {
			tsIdx = i
		}
	}

	prefix := rowPrefix(database, r.TableName())
	row := make([]any, len(cols))
	for i := 0; i < int(r.RowCount()); i++ {
		for j, c := range cols {
			if row[j], err = c.Value(i); err != nil {
				return 0, err
			}
		}

		if row[tsIdx] == nil {
			return 0, fmt.Errorf("%w: row %d", ErrNullTimestamp, i)
		}
		ts, ok := asInt64(row[tsIdx])
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedTimeType, schema.Cols[tsIdx].DataType)
		}
		tagHash, err := hashTags(schema, row)
		if err != nil {
			return 0, err
		}

		val, err := EncodeRow(schema, row)
		if err != nil {
			return 0, err
		}
		key := bx.AppendI64Sortable(append([]byte(nil), prefix...), ts)
		key = bx.AppendU64BE(key, tagHash)
		if err := txn.Set(key, val); err != nil {
			return 0, err
		}
	}
	return r.RowCount(), nil
}

// ensureSchema stores the table schema on first write and afterwards checks
// that the request carries the same columns (order may differ).
func ensureSchema(txn *badger.Txn, database string, r *record.InsertRequest) (TableSchema, error) {
	want := schemaOf(r)
	key := schemaKey(database, r.TableName())

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		b, err := json.Marshal(want)
		if err != nil {
			return TableSchema{}, err
		}
		return want, txn.Set(key, b)
	}
	if err != nil {
		return TableSchema{}, err
	}

	var stored TableSchema
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &stored) }); err != nil {
		return TableSchema{}, err
	}
	if !sameColumns(stored, want) {
		return TableSchema{}, fmt.Errorf("%w: stored %v, got %v", ErrSchemaConflict, stored.Names(), want.Names())
	}
	return stored, nil
}

func sameColumns(a, b TableSchema) bool {
	if a.NumCols() != b.NumCols() {
		return false
	}
	byName := make(map[string]ColumnSchema, a.NumCols())
	for _, c := range a.Cols {
		byName[c.Name] = c
	}
	for _, c := range b.Cols {
		if byName[c.Name] != c {
			return false
		}
	}
	return true
}

// Schema returns the stored schema of a table.
func (s *Store) Schema(database, table string) (TableSchema, error) {
	var schema TableSchema
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaKey(database, table))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTableNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &schema) })
	})
	return schema, err
}

// Rows lists a table's rows ordered by timestamp, in stored schema column
// order. Null values are nil.
func (s *Store) Rows(database, table string) ([]string, [][]any, error) {
	schema, err := s.Schema(database, table)
	if err != nil {
		return nil, nil, err
	}

	var rows [][]any
	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := rowPrefix(database, table)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				row, err := DecodeRow(schema, val)
				if err != nil {
					return err
				}
				rows = append(rows, row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return schema.Names(), rows, nil
}

// keyOf length-prefixes every part, so the key of one table is never a
// byte prefix of another table's keys.
func keyOf(kind byte, parts ...string) []byte {
	k := []byte{kind}
	for _, p := range parts {
		k = bx.AppendU32(k, uint32(len(p)))
		k = append(k, p...)
	}
	return k
}

func rowPrefix(database, table string) []byte { return keyOf(prefixRow, database, table) }
func schemaKey(database, table string) []byte { return keyOf(prefixSchema, database, table) }

func batchKey(database string, batchID uint64) []byte {
	return bx.AppendU64BE(keyOf(prefixBatch, database), batchID)
}

func hashTags(schema TableSchema, row []any) (uint64, error) {
	d := xxhash.New()
	for i, c := range schema.Cols {
		if c.Semantic != record.Tag {
			continue
		}
		if row[i] == nil {
			_, _ = d.Write([]byte{0})
			continue
		}
		b, err := appendValue([]byte{1}, c.DataType, row[i])
		if err != nil {
			return 0, err
		}
		_, _ = d.Write(b)
	}
	return d.Sum64(), nil
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint8:
		return int64(x), true
	}
	return 0, false
}
