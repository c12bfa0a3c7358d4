package dataset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robovac/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestAssemble_ColumnUnionFirstSeenOrder(t *testing.T) {
	records := []model.RawProduct{
		{
			SourceID: "1", SourceURL: "u1", Name: "A", PriceRaw: "CHF 100",
			Rating: f64(4.5),
			Attributes: map[string]string{
				"Key specifications  Battery life": "90 min",
			},
			Status: model.FetchOK,
		},
		{
			SourceID: "2", SourceURL: "u2", Name: "B",
			Attributes: map[string]string{
				"Battery properties  Capacity":     "2600 mAh",
				"Key specifications  Battery life": "120 min",
			},
			Status: model.FetchPartial,
		},
	}

	tab := Assemble(records)

	want := append(append([]string{}, FixedColumns...),
		"Key specifications  Battery life",
		"Battery properties  Capacity",
	)
	assert.Equal(t, want, tab.Columns)
	require.Len(t, tab.Rows, 2)

	assert.Equal(t, "A", tab.Cell(0, "product_name"))
	assert.Equal(t, "4.5", tab.Cell(0, "rating"))
	assert.Equal(t, "", tab.Cell(0, "Battery properties  Capacity"), "absent attribute is null")
	assert.Equal(t, "2600 mAh", tab.Cell(1, "Battery properties  Capacity"))
	assert.Equal(t, "partial", tab.Cell(1, "fetch_status"))
}

func TestTable_CSVRoundTrip(t *testing.T) {
	records := []model.RawProduct{
		{
			SourceID: "1", SourceURL: "u1", Name: "A, with comma", PriceRaw: `CHF "500"`,
			Attributes: map[string]string{"Colour  Colour": "Black"},
			Status:     model.FetchOK,
		},
	}
	tab := Assemble(records)

	var buf bytes.Buffer
	require.NoError(t, tab.WriteCSV(&buf))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, tab.Columns, got.Columns)
	assert.Equal(t, tab.Rows, got.Rows)
}

func TestReadCSV_EmptyInputFails(t *testing.T) {
	_, err := ReadCSV(bytes.NewReader(nil))
	assert.Error(t, err)
}
