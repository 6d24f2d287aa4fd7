package util

import "testing"

func TestFoldHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Categoría", "categoria"},
		{" TV_ACTIVO ", "tv activo"},
		{"TV  ACTIVO", "tv activo"},
		{"Precio Promo", "precio promo"},
		{"DESCRIPCIÓN", "descripcion"},
		{"Subcategoría\t", "subcategoria"},
	}
	for _, tc := range cases {
		if got := FoldHeader(tc.in); got != tc.want {
			t.Fatalf("FoldHeader(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("QUILMES_1LT-promo.png"); got != "quilmes 1lt promo png" {
		t.Fatalf("got %q", got)
	}
}

func TestDiceCoefficient(t *testing.T) {
	if DiceCoefficient("quilmes", "quilmes") != 1 {
		t.Fatal("identical strings must score 1")
	}
	if DiceCoefficient("", "x") != 0 {
		t.Fatal("empty string must score 0")
	}
	if s := DiceCoefficient("quilmes 1lt", "quilmes 1 lt"); s < 0.7 {
		t.Fatalf("score too low: %v", s)
	}
}
