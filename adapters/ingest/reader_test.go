package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablens/domain/core"
)

func TestRead_CSV(t *testing.T) {
	csvData := "name,amount,note\nalice,10,first\nbob,20,second\n"
	ds, err := NewReader().Read("sales.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"amount", "name", "note"}, ds.Columns())
	assert.Equal(t, "alice", ds[0]["name"])
	assert.Equal(t, "20", ds[1]["amount"])
}

func TestRead_CSVQuotedFields(t *testing.T) {
	csvData := "city,description\n\"Portland, OR\",\"rainy, green\"\nBoise,dry\n"
	ds, err := NewReader().Read("cities.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "Portland, OR", ds[0]["city"])
	assert.Equal(t, "rainy, green", ds[0]["description"])
}

func TestRead_TrimsWhitespace(t *testing.T) {
	csvData := " name , value \n alice , 10 \n"
	ds, err := NewReader().Read("pad.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, ds.Columns())
	assert.Equal(t, "alice", ds[0]["name"])
}

func TestRead_EmptyCellsAreNull(t *testing.T) {
	csvData := "a,b,c\n1,,3\n4,5,\n"
	ds, err := NewReader().Read("nulls.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Nil(t, ds[0]["b"])
	assert.Nil(t, ds[1]["c"])
	assert.Equal(t, "5", ds[1]["b"])
}

func TestRead_RaggedRows(t *testing.T) {
	csvData := "a,b,c\n1,2\n3,4,5,6\n"
	ds, err := NewReader().Read("ragged.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Nil(t, ds[0]["c"], "short row reads as null")
	assert.Equal(t, "5", ds[1]["c"], "extra trailing cells are dropped")
	assert.Len(t, ds[1], 3)
}

func TestRead_MaxRowsCap(t *testing.T) {
	csvData := "n\n1\n2\n3\n4\n5\n"
	ds, err := NewReader(WithMaxRows(3)).Read("cap.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Len(t, ds, 3)
	assert.Equal(t, "1", ds[0]["n"])
}

func TestRead_HeaderOnly(t *testing.T) {
	_, err := NewReader().Read("empty.csv", strings.NewReader("a,b,c\n"))
	assert.True(t, errors.Is(err, core.ErrEmptyFile))
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := NewReader().Read("data.parquet", strings.NewReader("x"))
	assert.True(t, errors.Is(err, core.ErrUnsupportedFile))
}
