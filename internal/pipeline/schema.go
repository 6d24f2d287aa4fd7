package pipeline

import "menuboard/internal/util"

// Field is a canonical column of the menu sheet.
type Field int

const (
	FieldCategory Field = iota
	FieldSubcategory
	FieldProduct
	FieldDescription
	FieldPrice
	FieldActive
	FieldOrder
	FieldPromo
	FieldPromoPrice
	FieldImage
	FieldBackgroundColor
	FieldTVActive
	FieldTVBlock
	FieldTVOrder
	FieldTVTitle
	FieldTVDescription
	FieldTVPriceText
	FieldTVDuration
	fieldCount
)

// aliases lists accepted header spellings per field, in priority order.
// Headers are compared after util.FoldHeader, so case, accents and
// underscores do not matter here.
var aliases = [fieldCount][]string{
	FieldCategory:        {"categoria", "category"},
	FieldSubcategory:     {"subcategoria", "subcategory"},
	FieldProduct:         {"producto", "product", "nombre", "name"},
	FieldDescription:     {"descripcion", "description"},
	FieldPrice:           {"precio", "price"},
	FieldActive:          {"activo", "active"},
	FieldOrder:           {"orden", "order"},
	FieldPromo:           {"promo", "promocion", "promotion"},
	FieldPromoPrice:      {"precio promo", "promo price"},
	FieldImage:           {"imagen", "image"},
	FieldBackgroundColor: {"colorfondo", "color fondo", "background color", "backgroundcolor"},
	FieldTVActive:        {"tv activo", "tv active"},
	FieldTVBlock:         {"tv bloque", "tv block"},
	FieldTVOrder:         {"tv orden", "tv order"},
	FieldTVTitle:         {"tv titulo", "tv title"},
	FieldTVDescription:   {"tv descripcion", "tv description"},
	FieldTVPriceText:     {"tv precio texto", "tv price text"},
	FieldTVDuration:      {"tv segundos", "tv duracion", "tv duration"},
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return aliases[f][0]
}

// ColumnIndex maps each field to its header position, -1 when absent.
type ColumnIndex [fieldCount]int

// Resolve folds the header once and finds every field. For each field the
// first alias present in the header wins; within one alias the leftmost
// column wins.
func Resolve(header []string) ColumnIndex {
	folded := make(map[string]int, len(header))
	for i, h := range header {
		key := util.FoldHeader(h)
		if _, ok := folded[key]; !ok {
			folded[key] = i
		}
	}

	var idx ColumnIndex
	for f := Field(0); f < fieldCount; f++ {
		idx[f] = -1
		for _, alias := range aliases[f] {
			if i, ok := folded[alias]; ok {
				idx[f] = i
				break
			}
		}
	}
	return idx
}

// Has reports whether the header carried the field.
func (c ColumnIndex) Has(f Field) bool {
	return c[f] >= 0
}

// Cell returns the raw cell, or "" when the column or the cell is missing.
func (c ColumnIndex) Cell(row []string, f Field) string {
	i := c[f]
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
