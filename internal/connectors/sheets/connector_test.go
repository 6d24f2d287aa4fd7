package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"menuboard/internal/config"
	"menuboard/internal/sheet"
)

func TestFetchExportValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/spreadsheets/sheet-1/values/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Menu!A1:C3","majorDimension":"ROWS","values":[["Categoría","Producto","Precio"],["Bebidas","Agua","300"],["Postres","Flan"]]}`))
	}))
	defer srv.Close()

	svc, err := gsheets.NewService(context.Background(),
		option.WithAPIKey("test-key"),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	c := &Connector{service: svc, spreadsheetID: "sheet-1", readRange: "Menu"}

	exp, err := c.FetchExport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "values", exp.Format)

	table, err := sheet.Parse(sheet.Format(exp.Format), exp.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Categoría", "Producto", "Precio"}, table.Header)
	assert.Equal(t, [][]string{{"Bebidas", "Agua", "300"}, {"Postres", "Flan"}}, table.Rows)
}

func TestNewConnectorRequiresCredentials(t *testing.T) {
	_, err := NewConnector(context.Background(), config.Config{SheetID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHEETS_CLIENT_ID")

	_, err = NewConnector(context.Background(), config.Config{})
	require.Error(t, err)
}
