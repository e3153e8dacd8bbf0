package record

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeInserter struct {
	calls int
	got   []*InsertRequest
	rows  uint32
	err   error
}

func (f *fakeInserter) Insert(_ context.Context, reqs ...*InsertRequest) (uint32, error) {
	f.calls++
	f.got = append(f.got, reqs...)
	return f.rows, f.err
}

// ---- helpers ----

func mustCol(c *Column, err error) *Column {
	if err != nil {
		panic(err)
	}
	return c
}

// weatherColumns mirrors the weather demo: ts, collector, temperature, humidity.
func weatherColumns(t *testing.T) []*Column {
	t.Helper()
	return []*Column{
		mustCol(NewTimestampColumn("ts", TimestampMillisecondValues{
			1686109527000, 1686023127000, 1685936727000,
			1686109527000, 1686023127000, 1685936727000,
		})),
		mustCol(NewTagColumn("collector", StringValues{"c1", "c1", "c1", "c2", "c2", "c2"}, nil)),
		mustCol(NewFieldColumn("temperature", Float32Values{26.4, 29.3, 31.8, 20.4, 18.0, 19.2}, nil)),
		mustCol(NewFieldColumn("humidity", Int32Values{15, 20, 13, 67, 74, 81}, nil)),
	}
}

func requireSchemaKind(t *testing.T, err error, kind SchemaErrorKind) *SchemaError {
	t.Helper()
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se), "want *SchemaError, got %T", err)
	require.Equal(t, kind, se.Kind, err.Error())
	return se
}

// ---- scenarios ----

func TestInsertRequest_ScenarioA_Valid(t *testing.T) {
	r, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)
	require.Equal(t, StateValidated, r.State())
	require.NoError(t, r.Validate())
	require.Equal(t, "weather_demo", r.TableName())
	require.Equal(t, uint32(6), r.RowCount())
	require.Len(t, r.Columns(), 4)

	c, ok := r.Column("collector")
	require.True(t, ok)
	require.Equal(t, Tag, c.SemanticType())
	_, ok = r.Column("Collector")
	require.False(t, ok)
}

func TestInsertRequest_ScenarioB_RowCountMismatch(t *testing.T) {
	cols := weatherColumns(t)
	cols[3] = mustCol(NewFieldColumn("humidity", Int32Values{15, 20, 13, 67, 74}, nil))

	_, err := NewInsertRequest("weather_demo", 6, cols...)
	se := requireSchemaKind(t, err, RowCountMismatch)
	require.Equal(t, "humidity", se.Column)
	require.Equal(t, "weather_demo", se.Table)
	require.ErrorIs(t, err, ErrRowCountMismatch)
	require.Contains(t, err.Error(), `column="humidity"`)
}

func TestInsertRequest_ScenarioC_DuplicateName(t *testing.T) {
	cols := weatherColumns(t)
	cols = append(cols, mustCol(NewFieldColumn("ts", Int64Values{1, 2, 3, 4, 5, 6}, nil)))

	_, err := NewInsertRequest("weather_demo", 6, cols...)
	se := requireSchemaKind(t, err, DuplicateColumnName)
	require.Equal(t, "ts", se.Column)
}

func TestInsertRequest_ScenarioD_MissingTimestamp(t *testing.T) {
	cols := weatherColumns(t)[1:]

	_, err := NewInsertRequest("weather_demo", 6, cols...)
	requireSchemaKind(t, err, MissingTimestampColumn)
	require.ErrorIs(t, err, ErrMissingTimestampColumn)
}

func TestInsertRequest_ScenarioE_TypeMismatch(t *testing.T) {
	// Only reachable by bypassing NewColumn, e.g. a hand-built column.
	bad := &Column{name: "humidity", semantic: Field, datatype: Int32, values: StringValues{"1", "2", "3", "4", "5", "6"}}
	cols := weatherColumns(t)
	cols[3] = bad

	_, err := NewInsertRequest("weather_demo", 6, cols...)
	se := requireSchemaKind(t, err, TypeMismatch)
	require.Equal(t, "humidity", se.Column)
}

func TestInsertRequest_MultipleTimestampColumns(t *testing.T) {
	cols := weatherColumns(t)
	cols = append(cols, mustCol(NewTimestampColumn("ts2", TimestampSecondValues{1, 2, 3, 4, 5, 6})))

	_, err := NewInsertRequest("weather_demo", 6, cols...)
	se := requireSchemaKind(t, err, MultipleTimestampColumns)
	require.Equal(t, "ts2", se.Column)
}

func TestInsertRequest_Boundaries(t *testing.T) {
	t.Run("zero rows zero columns", func(t *testing.T) {
		r, err := NewInsertRequest("weather_demo", 0)
		require.NoError(t, err)
		require.Equal(t, StateValidated, r.State())
	})

	t.Run("rows but no columns", func(t *testing.T) {
		_, err := NewInsertRequest("weather_demo", 3)
		requireSchemaKind(t, err, MissingTimestampColumn)
	})

	t.Run("zero rows with empty columns", func(t *testing.T) {
		ts := mustCol(NewTimestampColumn("ts", TimestampMillisecondValues{}))
		f := mustCol(NewFieldColumn("v", Float64Values{}, []bool{}))
		_, err := NewInsertRequest("weather_demo", 0, ts, f)
		require.NoError(t, err)
	})

	t.Run("empty table name", func(t *testing.T) {
		_, err := NewInsertRequest("", 0)
		requireSchemaKind(t, err, EmptyTableName)
	})

	t.Run("nil column", func(t *testing.T) {
		_, err := NewInsertRequest("weather_demo", 0, nil)
		requireSchemaKind(t, err, TypeMismatch)
	})
}

func TestInsertRequest_ValidateIdempotent(t *testing.T) {
	r, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Validate())
		require.Equal(t, StateValidated, r.State())
	}

	b, err := NewInsertRequestBuilder("weather_demo", 6)
	require.NoError(t, err)
	for _, c := range weatherColumns(t)[1:] {
		require.NoError(t, b.AddColumn(c))
	}
	first := b.Validate()
	second := b.Validate()
	require.Equal(t, first, second)
	requireSchemaKind(t, first, MissingTimestampColumn)
	require.Equal(t, StateBuilding, b.State())
}

func TestInsertRequest_AddColumn(t *testing.T) {
	r, err := NewInsertRequestBuilder("weather_demo", 6)
	require.NoError(t, err)
	require.Equal(t, StateBuilding, r.State())

	for _, c := range weatherColumns(t) {
		require.NoError(t, r.AddColumn(c))
	}
	require.Equal(t, StateBuilding, r.State())
	require.NoError(t, r.Validate())
	require.Equal(t, StateValidated, r.State())

	t.Run("duplicate", func(t *testing.T) {
		err := r.AddColumn(mustCol(NewFieldColumn("humidity", Int32Values{1, 2, 3, 4, 5, 6}, nil)))
		se := requireSchemaKind(t, err, DuplicateColumnName)
		require.Equal(t, "humidity", se.Column)
		// rejected columns leave the request untouched
		require.Len(t, r.Columns(), 4)
		require.Equal(t, StateValidated, r.State())
	})

	t.Run("length mismatch", func(t *testing.T) {
		err := r.AddColumn(mustCol(NewFieldColumn("pressure", Float64Values{1}, nil)))
		requireSchemaKind(t, err, RowCountMismatch)
	})

	t.Run("accepted column demotes to building", func(t *testing.T) {
		err := r.AddColumn(mustCol(NewFieldColumn("pressure", Float64Values{1, 2, 3, 4, 5, 6}, nil)))
		require.NoError(t, err)
		require.Equal(t, StateBuilding, r.State())
		require.NoError(t, r.Validate())
	})
}

func TestInsertRequest_ColumnsIsCopy(t *testing.T) {
	r, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)

	cols := r.Columns()
	cols[0] = nil
	require.NoError(t, r.Validate())
}

// ---- submit ----

func TestSubmit_PassesServerCountThrough(t *testing.T) {
	r, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)

	ins := &fakeInserter{rows: 4}
	rows, err := r.Submit(context.Background(), ins)
	require.NoError(t, err)
	require.Equal(t, uint32(4), rows)
	require.Equal(t, 1, ins.calls)
	require.Same(t, r, ins.got[0])
	require.Equal(t, StateSubmitted, r.State())

	// inspectable, not resubmittable
	require.Equal(t, uint32(6), r.RowCount())
	_, err = r.Submit(context.Background(), ins)
	require.ErrorIs(t, err, ErrRequestSubmitted)
	require.Equal(t, 1, ins.calls)
	require.ErrorIs(t, r.AddColumn(weatherColumns(t)[0]), ErrRequestSubmitted)
}

func TestSubmit_TransportErrorUnchanged(t *testing.T) {
	r, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)

	boom := errors.New("connection reset")
	rows, err := r.Submit(context.Background(), &fakeInserter{err: boom})
	require.Same(t, boom, err)
	require.Zero(t, rows)
	require.Equal(t, StateSubmitted, r.State())
}

func TestSubmit_ValidatesFirst(t *testing.T) {
	r, err := NewInsertRequestBuilder("weather_demo", 6)
	require.NoError(t, err)
	require.NoError(t, r.AddColumn(weatherColumns(t)[1]))

	ins := &fakeInserter{}
	_, err = r.Submit(context.Background(), ins)
	requireSchemaKind(t, err, MissingTimestampColumn)
	require.Zero(t, ins.calls)
	require.Equal(t, StateBuilding, r.State())
}

func TestSubmitAll_DifferentTables(t *testing.T) {
	a, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)
	b, err := NewInsertRequest("empty_table", 0)
	require.NoError(t, err)

	ins := &fakeInserter{rows: 6}
	rows, err := SubmitAll(context.Background(), ins, a, b)
	require.NoError(t, err)
	require.Equal(t, uint32(6), rows)
	require.Len(t, ins.got, 2)
	require.Equal(t, StateSubmitted, a.State())
	require.Equal(t, StateSubmitted, b.State())
}
