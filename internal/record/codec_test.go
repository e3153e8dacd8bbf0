package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRequest_RoundTrip(t *testing.T) {
	r, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)

	buf, err := EncodeRequest(r)
	require.NoError(t, err)
	require.Equal(t, WireVersion, buf[0])

	got, err := DecodeRequest(buf)
	require.NoError(t, err)
	require.Equal(t, StateValidated, got.State())
	require.Equal(t, r.TableName(), got.TableName())
	require.Equal(t, r.RowCount(), got.RowCount())

	want := r.Columns()
	cols := got.Columns()
	require.Len(t, cols, len(want))
	for i := range want {
		// column order is preserved
		require.Equal(t, want[i].Name(), cols[i].Name())
		require.Equal(t, want[i].SemanticType(), cols[i].SemanticType())
		require.Equal(t, want[i].DataType(), cols[i].DataType())
		require.Equal(t, want[i].Values(), cols[i].Values())
		require.Nil(t, cols[i].NullMask())
	}
}

func TestEncodeDecodeColumn_AllDataTypes(t *testing.T) {
	cases := []Values{
		BoolValues{true, false, true},
		Int8Values{math.MinInt8, 0, math.MaxInt8},
		Int16Values{math.MinInt16, -1, math.MaxInt16},
		Int32Values{math.MinInt32, 15, math.MaxInt32},
		Int64Values{math.MinInt64, 0, math.MaxInt64},
		UInt8Values{0, 1, math.MaxUint8},
		UInt16Values{0, 1, math.MaxUint16},
		UInt32Values{0, 1, math.MaxUint32},
		UInt64Values{0, 1, math.MaxUint64},
		Float32Values{26.4, -0.5, float32(math.Inf(1))},
		Float64Values{math.Pi, -1e300, 0},
		BinaryValues{{0x01, 0x02}, {}, {0xff}},
		StringValues{"c1", "", "température"},
		DateValues{19513, -1, 0},
		DateTimeValues{1686109527000, 0, -1},
		TimestampSecondValues{1686109527, 1686023127, 1685936727},
		TimestampMillisecondValues{1686109527000, 1686023127000, 1685936727000},
		TimestampMicrosecondValues{1, 2, 3},
		TimestampNanosecondValues{-3, 0, 3},
	}
	require.Len(t, cases, int(numDataTypes))

	for _, values := range cases {
		values := values
		t.Run(values.DataType().String(), func(t *testing.T) {
			c, err := NewColumn("col", Field, values.DataType(), values, []bool{false, true, false})
			require.NoError(t, err)

			buf, err := EncodeColumn(c)
			require.NoError(t, err)

			got, err := DecodeColumn(buf)
			require.NoError(t, err)
			require.Equal(t, values, got.Values())
			require.Equal(t, []bool{false, true, false}, got.NullMask())

			null, err := got.IsNull(1)
			require.NoError(t, err)
			require.True(t, null)
		})
	}
}

func TestEncodeDecodeColumn_NullMaskAcrossBytes(t *testing.T) {
	n := 19
	values := make(Int64Values, n)
	mask := make([]bool, n)
	for i := range values {
		values[i] = int64(i * 10)
		mask[i] = i%3 == 0
	}
	c, err := NewFieldColumn("v", values, mask)
	require.NoError(t, err)

	buf, err := EncodeColumn(c)
	require.NoError(t, err)
	got, err := DecodeColumn(buf)
	require.NoError(t, err)
	require.Equal(t, mask, got.NullMask())
	require.Equal(t, values, got.Values())
}

func TestEncodeDecodeColumn_EmptyMaskStaysPresent(t *testing.T) {
	c, err := NewFieldColumn("v", Float64Values{}, []bool{})
	require.NoError(t, err)

	buf, err := EncodeColumn(c)
	require.NoError(t, err)
	got, err := DecodeColumn(buf)
	require.NoError(t, err)
	require.True(t, got.HasNulls())
	require.Equal(t, 0, got.LogicalLength())
}

func TestEncodeRequest_RejectsInvalid(t *testing.T) {
	r, err := NewInsertRequestBuilder("weather_demo", 6)
	require.NoError(t, err)
	require.NoError(t, r.AddColumn(weatherColumns(t)[1]))

	_, err = EncodeRequest(r)
	requireSchemaKind(t, err, MissingTimestampColumn)
}

func TestDecodeRequest_Errors(t *testing.T) {
	r, err := NewInsertRequest("weather_demo", 6, weatherColumns(t)...)
	require.NoError(t, err)
	buf, err := EncodeRequest(r)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := DecodeRequest(nil)
		require.ErrorIs(t, err, ErrBadBuffer)
	})

	t.Run("version", func(t *testing.T) {
		bad := append([]byte{}, buf...)
		bad[0] = WireVersion + 1
		_, err := DecodeRequest(bad)
		require.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("truncated", func(t *testing.T) {
		for _, cut := range []int{1, 5, 20, len(buf) - 1} {
			_, err := DecodeRequest(buf[:cut])
			require.ErrorIs(t, err, ErrBadBuffer, "cut=%d", cut)
		}
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := DecodeRequest(append(append([]byte{}, buf...), 0))
		require.ErrorIs(t, err, ErrBadBuffer)
	})

	t.Run("unknown datatype tag", func(t *testing.T) {
		// version(1) + table(2+12) + rows(4) + ncols(2) + name(2+2) + semantic(1) => datatype
		off := 1 + 2 + len("weather_demo") + 4 + 2 + 2 + len("ts") + 1
		bad := append([]byte{}, buf...)
		require.Equal(t, uint8(TimestampMillisecond), bad[off])
		bad[off] = 250
		_, err := DecodeRequest(bad)
		se := requireSchemaKind(t, err, UnknownDataType)
		require.Equal(t, "ts", se.Column)
		require.Equal(t, "weather_demo", se.Table)
	})

	t.Run("unknown semantic tag", func(t *testing.T) {
		off := 1 + 2 + len("weather_demo") + 4 + 2 + 2 + len("ts")
		bad := append([]byte{}, buf...)
		bad[off] = 9
		_, err := DecodeRequest(bad)
		requireSchemaKind(t, err, UnknownSemanticType)
	})

	t.Run("invariants rechecked", func(t *testing.T) {
		// row_count sits right after the table name
		off := 1 + 2 + len("weather_demo")
		bad := append([]byte{}, buf...)
		bad[off] = 5
		_, err := DecodeRequest(bad)
		requireSchemaKind(t, err, RowCountMismatch)
	})
}

func TestDecodeColumn_HugeLengthRejected(t *testing.T) {
	c, err := NewFieldColumn("v", Int64Values{1}, nil)
	require.NoError(t, err)
	buf, err := EncodeColumn(c)
	require.NoError(t, err)

	// n sits after name(2+1) semantic datatype flags
	off := 2 + 1 + 3
	buf[off], buf[off+1], buf[off+2], buf[off+3] = 0xff, 0xff, 0xff, 0x7f
	_, err = DecodeColumn(buf)
	require.ErrorIs(t, err, ErrBadBuffer)
}
