package sheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuboard/internal"
)

const gvizWrapped = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","reqId":"0","status":"ok","table":{"cols":[{"id":"A","label":"Producto","type":"string"},{"id":"B","label":"Precio","type":"number"},{"id":"C","label":"Promo","type":"string"}],"rows":[{"c":[{"v":"Pizza {grande}"},{"v":1500.0,"f":"1.500"},null]},{"c":[{"v":"Empanada \"criolla\""},{"v":350.5},{"v":"sí"}]}]}});`

func TestParseGVizWrapped(t *testing.T) {
	table, err := ParseGViz([]byte(gvizWrapped))
	require.NoError(t, err)
	assert.Equal(t, []string{"Producto", "Precio", "Promo"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Pizza {grande}", "1500", ""}, table.Rows[0])
	assert.Equal(t, []string{`Empanada "criolla"`, "350.5", "sí"}, table.Rows[1])
}

func TestParseGVizHeaderless(t *testing.T) {
	body := `setResponse({"status":"ok","table":{"cols":[{"id":"A","label":""},{"id":"B","label":""}],"rows":[{"c":[{"v":"Producto"},{"v":"Precio"}]},{"c":[{"v":"Té"},{"v":200}]}]}})`
	table, err := ParseGViz([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Producto", "Precio"}, table.Header)
	assert.Equal(t, [][]string{{"Té", "200"}}, table.Rows)
}

func TestParseGVizErrorStatus(t *testing.T) {
	body := `setResponse({"status":"error","errors":[{"reason":"invalid_query","message":"INVALID_QUERY","detailed_message":"Invalid query: NO_COLUMN: Z"}]})`
	_, err := ParseGViz([]byte(body))
	require.Error(t, err)
	assert.True(t, errors.Is(err, internal.ErrParse))
	assert.Contains(t, err.Error(), "NO_COLUMN")
}

func TestParseGVizNoObject(t *testing.T) {
	_, err := ParseGViz([]byte("<html>sign in</html>"))
	require.ErrorIs(t, err, internal.ErrParse)
}

func TestExtractJSONObject(t *testing.T) {
	obj, err := ExtractJSONObject([]byte(`cb({"a":"}\"{","b":{"c":1}}) trailing }`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":"}\"{","b":{"c":1}}`, string(obj))

	_, err = ExtractJSONObject([]byte(`cb({"a":1`))
	assert.Error(t, err)
}

func TestParseGVizNumbersStayDecimal(t *testing.T) {
	body := `{"status":"ok","table":{"cols":[{"label":"Producto"},{"label":"Precio"}],"rows":[` +
		`{"c":[{"v":"Té"},{"v":2.125}]},{"c":[{"v":"Café"},{"v":1500}]},{"c":[{"v":"Agua"},{"v":1234.567}]}]}}`
	table, err := ParseGViz([]byte(body))
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "2.1250", table.Rows[0][1])
	assert.Equal(t, "1500", table.Rows[1][1])
	assert.Equal(t, "1234.567", table.Rows[2][1])
}
