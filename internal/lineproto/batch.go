package lineproto

import (
	"fmt"

	"github.com/raulk/clock"

	"github.com/tuannm99/novaingest/internal/record"
)

// Batch collects points and pivots them into one columnar request per
// table. Points missing a tag or field get a null in that column.
type Batch struct {
	precision Precision
	clock     clock.Clock

	tables []*table
	byName map[string]*table
}

type column struct {
	name     string
	semantic record.SemanticType
	datatype record.DataType
	vals     []any
	null     []bool
}

type table struct {
	name  string
	rows  int
	ts    []int64
	cols  []*column
	byKey map[string]*column
}

type BatchOption func(*Batch)

// WithClock sets the clock read for points without a timestamp.
func WithClock(c clock.Clock) BatchOption {
	return func(b *Batch) { b.clock = c }
}

func NewBatch(p Precision, opts ...BatchOption) *Batch {
	b := &Batch{precision: p, clock: clock.New(), byName: map[string]*table{}}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Batch) Precision() Precision { return b.precision }

// Len is the number of buffered points.
func (b *Batch) Len() int {
	n := 0
	for _, t := range b.tables {
		n += t.rows
	}
	return n
}

// AddLine parses line and buffers the point. Blank and comment lines are
// ignored.
func (b *Batch) AddLine(line string) error {
	p, err := ParseLine(line)
	if err != nil || p == nil {
		return err
	}
	return b.Add(p)
}

// Add buffers p. A point whose field type differs from the type already
// seen for that field is rejected and leaves the batch unchanged.
func (b *Batch) Add(p *Point) error {
	t := b.byName[p.Table]
	if t == nil {
		t = &table{name: p.Table, byKey: map[string]*column{}}
	}

	// check first so a rejected point leaves no partial row behind
	seen := map[string]bool{TimestampColumn: true}
	for _, tag := range p.Tags {
		if seen[tag.Key] {
			return fmt.Errorf("%w: key %q used twice", ErrSyntax, tag.Key)
		}
		seen[tag.Key] = true
	}
	for _, f := range p.Fields {
		if seen[f.Key] {
			return fmt.Errorf("%w: key %q used twice", ErrSyntax, f.Key)
		}
		seen[f.Key] = true
	}
	for _, tag := range p.Tags {
		if c := t.byKey[tag.Key]; c != nil && c.semantic != record.Tag {
			return fmt.Errorf("%w: %q is a field in table %q", ErrFieldType, tag.Key, p.Table)
		}
	}
	for _, f := range p.Fields {
		c := t.byKey[f.Key]
		if c == nil {
			continue
		}
		if c.semantic != record.Field || c.datatype != dataTypeOf(f.Value) {
			return fmt.Errorf("%w: %q in table %q is %s, got %s", ErrFieldType, f.Key, p.Table, c.datatype, dataTypeOf(f.Value))
		}
	}

	if b.byName[p.Table] == nil {
		b.byName[p.Table] = t
		b.tables = append(b.tables, t)
	}

	ts := p.Time
	if !p.HasTime {
		ts = b.precision.fromTime(b.clock.Now())
	}
	t.ts = append(t.ts, ts)
	for _, c := range t.cols {
		c.vals = append(c.vals, nil)
		c.null = append(c.null, true)
	}
	t.rows++

	for _, tag := range p.Tags {
		t.set(tag.Key, record.Tag, record.String, tag.Value)
	}
	for _, f := range p.Fields {
		t.set(f.Key, record.Field, dataTypeOf(f.Value), f.Value)
	}
	return nil
}

// set writes v into the last row, creating the column with earlier rows
// null when it is new.
func (t *table) set(key string, st record.SemanticType, dt record.DataType, v any) {
	c := t.byKey[key]
	if c == nil {
		c = &column{
			name:     key,
			semantic: st,
			datatype: dt,
			vals:     make([]any, t.rows),
			null:     make([]bool, t.rows),
		}
		for i := range c.null {
			c.null[i] = true
		}
		t.byKey[key] = c
		t.cols = append(t.cols, c)
	}
	c.vals[t.rows-1] = v
	c.null[t.rows-1] = false
}

// Requests builds one request per table, in the order tables were first
// seen. The points stay buffered, so a failed send can be retried with
// fresh requests.
func (b *Batch) Requests() ([]*record.InsertRequest, error) {
	reqs := make([]*record.InsertRequest, 0, len(b.tables))
	for _, t := range b.tables {
		r, err := t.request(b.precision)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

// Flush is Requests followed by Reset.
func (b *Batch) Flush() ([]*record.InsertRequest, error) {
	reqs, err := b.Requests()
	if err != nil {
		return nil, err
	}
	b.Reset()
	return reqs, nil
}

// Reset drops every buffered point.
func (b *Batch) Reset() {
	b.tables = nil
	b.byName = map[string]*table{}
}

func (t *table) request(p Precision) (*record.InsertRequest, error) {
	ts, err := record.NewTimestampColumn(TimestampColumn, p.values(t.ts))
	if err != nil {
		return nil, err
	}
	cols := []*record.Column{ts}
	for _, c := range t.cols {
		col, err := c.build()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return record.NewInsertRequest(t.name, uint32(t.rows), cols...)
}

func (c *column) build() (*record.Column, error) {
	values := record.NewValues(c.datatype, len(c.vals))
	for i, v := range c.vals {
		if v == nil {
			continue
		}
		switch vs := values.(type) {
		case record.BoolValues:
			vs[i] = v.(bool)
		case record.Int64Values:
			vs[i] = v.(int64)
		case record.UInt64Values:
			vs[i] = v.(uint64)
		case record.Float64Values:
			vs[i] = v.(float64)
		case record.StringValues:
			vs[i] = v.(string)
		}
	}

	var mask []bool
	for _, null := range c.null {
		if null {
			mask = c.null
			break
		}
	}
	return record.NewColumn(c.name, c.semantic, c.datatype, values, mask)
}
