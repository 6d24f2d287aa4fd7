package pipeline

import (
	"sort"
	"strings"
	"time"

	"menuboard/internal"
	"menuboard/internal/config"
	"menuboard/internal/util"
)

// Normalizer maps raw rows onto Items. It is total: every row yields an
// Item, and callers drop the ones without a name.
type Normalizer struct {
	PromoRule       internal.PromoRule
	DefaultCategory string
	Money           util.MoneyFormatter
}

func NewNormalizer(cfg config.Config) Normalizer {
	return Normalizer{
		PromoRule:       cfg.PromoRule,
		DefaultCategory: cfg.DefaultCategory,
		Money:           util.NewMoneyFormatter(cfg.Locale, cfg.CurrencyPrefix),
	}
}

// NormalizeRow builds one Item from a positional row. rowNo is the row's
// position in the export and is kept for stable ordering.
func (n Normalizer) NormalizeRow(idx ColumnIndex, row []string, rowNo int) internal.Item {
	cell := func(f Field) string { return strings.TrimSpace(idx.Cell(row, f)) }

	category := cell(FieldCategory)
	if category == "" {
		category = n.DefaultCategory
	}

	tvActive := cell(FieldTVActive)
	duration := time.Duration(0)
	if secs := util.CoerceNumber(cell(FieldTVDuration), 0); secs > 0 {
		duration = time.Duration(secs * float64(time.Second))
	}

	return internal.Item{
		Row:             rowNo,
		Category:        category,
		Subcategory:     cell(FieldSubcategory),
		Name:            cell(FieldProduct),
		Description:     cell(FieldDescription),
		BasePrice:       n.Money.Text(cell(FieldPrice)),
		Active:          util.CoerceYesNo(cell(FieldActive)),
		SortOrder:       util.CoerceNumber(cell(FieldOrder), internal.OrderUnset),
		IsPromotion:     util.CoercePromotionFlag(cell(FieldPromo), n.PromoRule),
		PromoPrice:      n.Money.Text(cell(FieldPromoPrice)),
		Image:           cell(FieldImage),
		BackgroundColor: strings.ToLower(cell(FieldBackgroundColor)),

		SignageEligible:    tvActive == "" || util.CoerceYesNo(tvActive),
		SignageGroup:       cell(FieldTVBlock),
		SignageOrder:       util.CoerceNumber(cell(FieldTVOrder), internal.OrderUnset),
		SignageTitle:       cell(FieldTVTitle),
		SignageDescription: cell(FieldTVDescription),
		SignagePriceText:   cell(FieldTVPriceText),
		SignageDuration:    duration,
	}
}

// NormalizeRecord builds an Item from a label-keyed row, as produced by
// sheet.Table.Records. Labels are matched with the same alias table.
func (n Normalizer) NormalizeRecord(rec map[string]string, rowNo int) internal.Item {
	header := make([]string, 0, len(rec))
	for k := range rec {
		header = append(header, k)
	}
	sort.Strings(header)
	row := make([]string, len(header))
	for i, k := range header {
		row[i] = rec[k]
	}
	return n.NormalizeRow(Resolve(header), row, rowNo)
}

// NormalizeTable resolves the header once and normalizes every row, dropping
// rows whose product name is blank.
func (n Normalizer) NormalizeTable(header []string, rows [][]string) []internal.Item {
	idx := Resolve(header)
	out := make([]internal.Item, 0, len(rows))
	for i, row := range rows {
		item := n.NormalizeRow(idx, row, i+1)
		if item.Name == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
