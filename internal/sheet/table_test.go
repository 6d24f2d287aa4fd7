package sheet

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"menuboard/internal"
)

func TestRecordsFirstColumnWins(t *testing.T) {
	table := FromMatrix([][]string{
		{" Producto ", "PRECIO", "producto"},
		{"Flan", "900", "ignored"},
		{"Té"},
	})
	got := table.Records()
	want := []map[string]string{
		{"producto": "Flan", "precio": "900"},
		{"producto": "Té", "precio": ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestParseDispatch(t *testing.T) {
	table, err := Parse(FormatCSV, []byte("Producto,Precio\r\nFlan,900\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]string{{"Flan", "900"}}, table.Rows); diff != "" {
		t.Fatal(diff)
	}

	table, err = Parse(FormatValues, []byte(`{"range":"Menu!A1:B2","values":[["Producto","Precio"],["Flan",900]]}`))
	if err != nil {
		t.Fatal(err)
	}
	if table.Rows[0][1] != "900" {
		t.Fatalf("values row=%v", table.Rows[0])
	}

	if _, err := Parse(FormatCSV, []byte("\n\n")); !errors.Is(err, internal.ErrParse) {
		t.Fatalf("empty csv err=%v", err)
	}
	if _, err := Parse(Format("pdf"), nil); !errors.Is(err, internal.ErrParse) {
		t.Fatalf("unknown format err=%v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"menu.CSV":  FormatCSV,
		"menu.xlsx": FormatXLSX,
		"pub.htm":   FormatHTML,
		"gviz.json": FormatGViz,
	}
	for path, want := range cases {
		if got := FormatFromPath(path); got != want {
			t.Errorf("%s: got %s want %s", path, got, want)
		}
	}
}
