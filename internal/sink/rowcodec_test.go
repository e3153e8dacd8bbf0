package sink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novaingest/internal/record"
)

// makeTestSchema covers a tag, a timestamp and one field per storage width.
func makeTestSchema() TableSchema {
	return TableSchema{
		Cols: []ColumnSchema{
			{Name: "ts", Semantic: record.Timestamp, DataType: record.TimestampMillisecond},
			{Name: "host", Semantic: record.Tag, DataType: record.String},
			{Name: "day", Semantic: record.Field, DataType: record.Date},
			{Name: "up", Semantic: record.Field, DataType: record.Boolean},
			{Name: "load", Semantic: record.Field, DataType: record.Float64},
			{Name: "cpu", Semantic: record.Field, DataType: record.UInt8},
			{Name: "raw", Semantic: record.Field, DataType: record.Binary},
			{Name: "temp", Semantic: record.Field, DataType: record.Float32},
			{Name: "errs", Semantic: record.Field, DataType: record.Int16},
		},
	}
}

func TestEncodeDecodeRow_RoundTrip(t *testing.T) {
	schema := makeTestSchema()

	values := []any{
		int64(1686109527000),
		"web-1",
		int32(19513),
		true,
		3.14159,
		uint8(97),
		[]byte{0x01, 0x02, 0x03},
		float32(26.4),
		int16(-3),
	}

	buf, err := EncodeRow(schema, values)
	require.NoError(t, err)

	row, err := DecodeRow(schema, buf)
	require.NoError(t, err)
	require.Equal(t, values, row)
}

func TestEncodeDecodeRow_Nulls(t *testing.T) {
	schema := makeTestSchema()

	values := []any{int64(1), nil, int32(0), nil, 1.5, nil, nil, float32(0), nil}

	buf, err := EncodeRow(schema, values)
	require.NoError(t, err)

	row, err := DecodeRow(schema, buf)
	require.NoError(t, err)
	require.Equal(t, values, row)
}

func TestEncodeRow_SchemaMismatch(t *testing.T) {
	schema := makeTestSchema()

	t.Run("wrong number of values", func(t *testing.T) {
		_, err := EncodeRow(schema, []any{int64(1)})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("wrong Go type for column", func(t *testing.T) {
		values := []any{"not-a-ts", nil, nil, nil, nil, nil, nil, nil, nil}
		_, err := EncodeRow(schema, values)
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestDecodeRow_Truncated(t *testing.T) {
	schema := makeTestSchema()
	buf, err := EncodeRow(schema, []any{int64(1), "web-1", nil, nil, nil, nil, nil, nil, nil})
	require.NoError(t, err)

	_, err = DecodeRow(schema, buf[:len(buf)-2])
	require.ErrorIs(t, err, ErrBadBuffer)

	_, err = DecodeRow(schema, nil)
	require.ErrorIs(t, err, ErrBadBuffer)
}
