package pipeline

import (
	"strings"

	"menuboard/internal"
	"menuboard/internal/util"
)

// PriceDisplay is what a screen shows: Main as the headline price and Struck
// as the crossed-out previous price, either possibly empty.
type PriceDisplay struct {
	Main   string `json:"main,omitempty"`
	Struck string `json:"struck,omitempty"`
}

// DisplayPrice applies override > promo > base. The base price is struck
// through only when the promo price is the one shown. Zero or negative
// numeric prices count as absent.
func DisplayPrice(it internal.Item) PriceDisplay {
	if t := strings.TrimSpace(it.SignagePriceText); t != "" {
		return PriceDisplay{Main: t}
	}
	base := it.BasePrice
	if !util.ShowsPrice(base) {
		base = ""
	}
	if it.IsPromotion && util.ShowsPrice(it.PromoPrice) {
		return PriceDisplay{Main: it.PromoPrice, Struck: base}
	}
	return PriceDisplay{Main: base}
}

// MainPrice is the headline price of DisplayPrice.
func MainPrice(it internal.Item) string {
	return DisplayPrice(it).Main
}

func SignageTitle(it internal.Item) string {
	for _, v := range []string{it.SignageTitle, it.Category, it.Name} {
		if v = strings.TrimSpace(v); v != "" {
			return strings.ToUpper(v)
		}
	}
	return "PROMO"
}

func SignageDescription(it internal.Item) string {
	if t := strings.TrimSpace(it.SignageDescription); t != "" {
		return t
	}
	return strings.TrimSpace(it.Description)
}

var categoryIcons = map[string]string{
	"Entradas / Picadas":     "🥟",
	"Sandwiches / Calientes": "🥪",
	"Pizzas":                 "🍕",
	"Ensaladas":              "🥗",
	"Postres":                "🍰",
	"Acompañamientos":        "🍟",
	"Carnes":                 "🍖",
	"Sin Alcohol":            "🥤",
	"Vinos":                  "🍷",
	"Cervezas":               "🍺",
	"Aperitivos":             "🍸",
	"Varios":                 "⭐",
}

// CategoryIcon returns the menu icon for a category, "•" when unknown.
// Matching ignores case and accents.
func CategoryIcon(category string) string {
	key := util.FoldHeader(category)
	for name, icon := range categoryIcons {
		if util.FoldHeader(name) == key {
			return icon
		}
	}
	return "•"
}
