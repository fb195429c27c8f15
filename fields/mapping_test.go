package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	doc := decode(t, `{"symbol": "AAPL", "price": 189.91, "changePercent": -1.2}`)

	got := Render(doc, []Mapping{
		{DisplayName: "Symbol", FieldPath: "symbol"},
		{DisplayName: "Price", FieldPath: "price", Format: FormatCurrency},
		{DisplayName: "Change", FieldPath: "changePercent", Format: FormatPercentage},
		{DisplayName: "Volume", FieldPath: "volume", Format: FormatNumber},
	})

	require.Len(t, got, 4)
	assert.Equal(t, Value{DisplayName: "Symbol", FieldPath: "symbol", Raw: "AAPL", Display: "AAPL"}, got[0])
	assert.Equal(t, "$189.91", got[1].Display)
	assert.Equal(t, "-1.20%", got[2].Display)
	assert.Nil(t, got[3].Raw)
	assert.Equal(t, Placeholder, got[3].Display)
}

func TestRender_NoMappings(t *testing.T) {
	assert.Empty(t, Render(map[string]any{"a": 1.0}, nil))
}

func TestRenderRows(t *testing.T) {
	mappings := []Mapping{
		{DisplayName: "Symbol", FieldPath: "symbol"},
		{DisplayName: "Price", FieldPath: "price", Format: FormatCurrency},
	}

	t.Run("array renders one row per element", func(t *testing.T) {
		doc := decode(t, `[{"symbol": "AAPL", "price": 1}, {"symbol": "MSFT", "price": 2}]`)

		rows := RenderRows(doc, mappings)
		require.Len(t, rows, 2)
		assert.Equal(t, "MSFT", rows[1][0].Display)
		assert.Equal(t, "$2.00", rows[1][1].Display)
	})

	t.Run("object renders a single row", func(t *testing.T) {
		rows := RenderRows(decode(t, `{"symbol": "AAPL"}`), mappings)
		require.Len(t, rows, 1)
		assert.Equal(t, Placeholder, rows[0][1].Display)
	})

	t.Run("nil renders nothing", func(t *testing.T) {
		assert.Nil(t, RenderRows(nil, mappings))
	})
}
