package sheet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCSVQuoting(t *testing.T) {
	got := ParseCSV(`a,"b,c","d""e",f`)
	want := [][]string{{"a", "b,c", `d"e`, "f"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVLineEndings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want [][]string
	}{
		{"crlf", "x\r\ny", [][]string{{"x"}, {"y"}}},
		{"lone cr", "x\ry\r", [][]string{{"x"}, {"y"}}},
		{"lf trailing", "a,b\nc,d\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"blank lines", "a\n\n\r\n\nb", [][]string{{"a"}, {"b"}}},
		{"newline in quotes", "\"l1\nl2\",z", [][]string{{"l1\nl2", "z"}}},
		{"empty cells", "a,,\n", [][]string{{"a", "", ""}}},
		{"quoted empty line", "\"\"\nb", [][]string{{""}, {"b"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCSV(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if rows := ParseCSV(""); len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tables := [][][]string{
		{{"Categoría", "Producto", "Precio"}, {"Bebidas", "Coca, 1.5L", "$ 1.500"}},
		{{`say "hi"`, "x\r\ny"}, {"", ""}},
		{{"solo"}, {""}, {"fin"}},
		{{"a\rb", ",", `"`}},
	}
	for i, rows := range tables {
		got := ParseCSV(WriteCSV(rows))
		if diff := cmp.Diff(rows, got); diff != "" {
			t.Fatalf("table %d round trip (-want +got):\n%s", i, diff)
		}
	}
}
