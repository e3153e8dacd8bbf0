package novaingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novaingest"
)

type countingInserter struct {
	calls int
	err   error
}

func (c *countingInserter) Insert(_ context.Context, reqs ...*novaingest.InsertRequest) (uint32, error) {
	c.calls++
	var n uint32
	for _, r := range reqs {
		n += r.RowCount()
	}
	return n, c.err
}

func TestFacade_BuildAndSubmit(t *testing.T) {
	ts, err := novaingest.NewTimestampColumn("ts", novaingest.TimestampMillisecondValues{1, 2})
	require.NoError(t, err)
	host, err := novaingest.NewTagColumn("host", novaingest.StringValues{"a", "b"}, nil)
	require.NoError(t, err)
	load, err := novaingest.NewColumn("load", novaingest.Field, novaingest.Float64, novaingest.Float64Values{0.5, 0}, []bool{false, true})
	require.NoError(t, err)

	r, err := novaingest.NewInsertRequest("cpu", 2, ts, host, load)
	require.NoError(t, err)
	require.Equal(t, novaingest.StateValidated, r.State())

	ins := &countingInserter{}
	rows, err := novaingest.SubmitAll(context.Background(), ins, r)
	require.NoError(t, err)
	require.Equal(t, uint32(2), rows)
	require.Equal(t, novaingest.StateSubmitted, r.State())

	_, err = r.Submit(context.Background(), ins)
	require.ErrorIs(t, err, novaingest.ErrRequestSubmitted)
	require.Equal(t, 1, ins.calls)
}

func TestFacade_SchemaError(t *testing.T) {
	v, err := novaingest.NewFieldColumn("v", novaingest.Int32Values{1, 2}, nil)
	require.NoError(t, err)

	_, err = novaingest.NewInsertRequest("cpu", 2, v)
	require.ErrorIs(t, err, novaingest.ErrMissingTimestampColumn)

	var se *novaingest.SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "cpu", se.Table)
}

func TestFacade_Builder(t *testing.T) {
	r, err := novaingest.NewInsertRequestBuilder("cpu", 1)
	require.NoError(t, err)
	require.Equal(t, novaingest.StateBuilding, r.State())

	_, err = novaingest.NewInsertRequestBuilder("", 1)
	require.ErrorIs(t, err, novaingest.ErrEmptyTableName)
}
