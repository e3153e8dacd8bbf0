package record

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// State is the lifecycle stage of an InsertRequest.
type State uint8

const (
	StateBuilding State = iota
	StateValidated
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "Building"
	case StateValidated:
		return "Validated"
	case StateSubmitted:
		return "Submitted"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Inserter is the transport collaborator that ships requests to the server
// and reports how many rows were written.
type Inserter interface {
	Insert(ctx context.Context, reqs ...*InsertRequest) (uint32, error)
}

// InsertRequest is a batch of columns targeting one table. It is not safe
// for concurrent mutation; build it on one goroutine and hand it off.
type InsertRequest struct {
	tableName string
	columns   []*Column
	rowCount  uint32
	state     State
}

// NewInsertRequest assembles and fully validates a request. The returned
// request is in StateValidated.
func NewInsertRequest(tableName string, rowCount uint32, columns ...*Column) (*InsertRequest, error) {
	r, err := NewInsertRequestBuilder(tableName, rowCount)
	if err != nil {
		return nil, err
	}
	r.columns = append(r.columns, columns...)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewInsertRequestBuilder returns an empty request in StateBuilding, to be
// filled with AddColumn and then validated.
func NewInsertRequestBuilder(tableName string, rowCount uint32) (*InsertRequest, error) {
	if tableName == "" {
		return nil, &SchemaError{Kind: EmptyTableName, Detail: "table name must not be empty"}
	}
	return &InsertRequest{tableName: tableName, rowCount: rowCount}, nil
}

func (r *InsertRequest) TableName() string { return r.tableName }
func (r *InsertRequest) RowCount() uint32  { return r.rowCount }
func (r *InsertRequest) State() State      { return r.state }

// Columns returns the columns in caller order. The slice is a copy.
func (r *InsertRequest) Columns() []*Column {
	return append([]*Column(nil), r.columns...)
}

// Column looks a column up by its case-sensitive name.
func (r *InsertRequest) Column(name string) (*Column, bool) {
	return lo.Find(r.columns, func(c *Column) bool { return c.name == name })
}

// AddColumn appends c after checking its variant, its length against the
// row count and its name against the columns already present. A validated
// request goes back to StateBuilding.
func (r *InsertRequest) AddColumn(c *Column) error {
	if r.state == StateSubmitted {
		return ErrRequestSubmitted
	}
	seen := make(map[string]struct{}, len(r.columns))
	for _, existing := range r.columns {
		seen[existing.name] = struct{}{}
	}
	if err := r.checkColumn(c, seen); err != nil {
		return r.withTable(err)
	}
	r.columns = append(r.columns, c)
	r.state = StateBuilding
	return nil
}

// Validate re-checks every invariant. On success a building request moves
// to StateValidated; calling it again on an unmodified request gives the
// same answer.
func (r *InsertRequest) Validate() error {
	if r.state == StateSubmitted {
		return ErrRequestSubmitted
	}
	if err := r.Check(); err != nil {
		return err
	}
	r.state = StateValidated
	return nil
}

// Check runs the same checks as Validate without touching the lifecycle.
// The codec calls it on both sides of the wire.
func (r *InsertRequest) Check() error {
	if r.tableName == "" {
		return &SchemaError{Kind: EmptyTableName, Detail: "table name must not be empty"}
	}
	if len(r.columns) == 0 {
		if r.rowCount == 0 {
			return nil
		}
		return r.withTable(schemaErr(MissingTimestampColumn, "", "request declares %d rows but has no columns", r.rowCount))
	}

	seen := make(map[string]struct{}, len(r.columns))
	for _, c := range r.columns {
		if err := r.checkColumn(c, seen); err != nil {
			return r.withTable(err)
		}
		seen[c.name] = struct{}{}
	}

	ts := lo.Filter(r.columns, func(c *Column, _ int) bool { return c.semantic == Timestamp })
	switch len(ts) {
	case 0:
		return r.withTable(schemaErr(MissingTimestampColumn, "", "no column has semantic type Timestamp"))
	case 1:
		return nil
	default:
		names := lo.Map(ts, func(c *Column, _ int) string { return c.name })
		return r.withTable(schemaErr(MultipleTimestampColumns, ts[1].name, "timestamp columns %v", names))
	}
}

func (r *InsertRequest) checkColumn(c *Column, seen map[string]struct{}) *SchemaError {
	if c == nil {
		return schemaErr(TypeMismatch, "", "nil column")
	}
	if c.name == "" {
		return schemaErr(EmptyColumnName, "", "column name must not be empty")
	}
	if err := checkVariant(c.name, c.datatype, c.values); err != nil {
		return err
	}
	if n := c.LogicalLength(); n != int(r.rowCount) {
		return schemaErr(RowCountMismatch, c.name, "column has %d values, request declares %d rows", n, r.rowCount)
	}
	if _, dup := seen[c.name]; dup {
		return schemaErr(DuplicateColumnName, c.name, "column name appears more than once")
	}
	return nil
}

func (r *InsertRequest) withTable(err *SchemaError) error {
	err.Table = r.tableName
	return err
}

// Submit validates r and hands it to ins. The count returned is what the
// server reports as written and may differ from RowCount.
func (r *InsertRequest) Submit(ctx context.Context, ins Inserter) (uint32, error) {
	return SubmitAll(ctx, ins, r)
}

// SubmitAll hands several requests, possibly for different tables, to ins in
// one call. Every request must validate first. Once ins returns, success or
// not, all of them are in StateSubmitted and cannot be submitted again.
// Errors from ins are returned unchanged.
func SubmitAll(ctx context.Context, ins Inserter, reqs ...*InsertRequest) (uint32, error) {
	for _, r := range reqs {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}

	rows, err := ins.Insert(ctx, reqs...)
	for _, r := range reqs {
		r.state = StateSubmitted
	}
	return rows, err
}
