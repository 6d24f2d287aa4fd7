package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pubHTML = `<html><body>
<div id="sheets-viewport"><table class="waffle">
<thead><tr><th class="row-header"></th><th>A</th><th>B</th><th>C</th></tr></thead>
<tbody>
<tr class="freezebar"><td></td></tr>
<tr><td>Categoría</td><td>Producto</td><td>Precio</td></tr>
<tr><td>Bebidas</td><td>Agua   sin
 gas</td><td>$ 300</td></tr>
<tr><td></td><td></td><td></td></tr>
<tr><td>Postres</td><td>Flan</td><td>$ 900</td></tr>
</tbody></table></div></body></html>`

func TestParseHTMLPublishedSheet(t *testing.T) {
	table, err := ParseHTML([]byte(pubHTML))
	require.NoError(t, err)
	assert.Equal(t, []string{"Categoría", "Producto", "Precio"}, table.Header)
	assert.Equal(t, [][]string{
		{"Bebidas", "Agua sin gas", "$ 300"},
		{"Postres", "Flan", "$ 900"},
	}, table.Rows)
}

func TestParseHTMLNoTable(t *testing.T) {
	_, err := ParseHTML([]byte("<p>nothing</p>"))
	assert.Error(t, err)
}

func TestIsColumnLetters(t *testing.T) {
	assert.True(t, isColumnLetters([]string{"", "A", "B", "C"}))
	assert.False(t, isColumnLetters([]string{"A", "C"}))
	assert.False(t, isColumnLetters([]string{"Producto"}))
	assert.Equal(t, "AA", columnName(26))
}
