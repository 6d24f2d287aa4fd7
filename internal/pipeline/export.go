package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"menuboard/internal"
)

// MenuDocument is the published shape of the menu, served by the API and
// uploaded as menu.json.
type MenuDocument struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Generation  uint64         `json:"generation"`
	Categories  []MenuCategory `json:"categories"`
	Promotions  []PromoCard    `json:"promotions"`
}

type MenuCategory struct {
	Name  string     `json:"name"`
	Icon  string     `json:"icon"`
	Items []MenuLine `json:"items"`
}

type MenuLine struct {
	Name        string       `json:"name"`
	Subcategory string       `json:"subcategory,omitempty"`
	Description string       `json:"description,omitempty"`
	Price       PriceDisplay `json:"price"`
	Promotion   bool         `json:"promotion"`
	Image       string       `json:"image"`
	Background  string       `json:"background,omitempty"`
}

// PromoCard is one promotion as the signage screen renders it.
type PromoCard struct {
	Title       string       `json:"title"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       PriceDisplay `json:"price"`
	Image       string       `json:"image"`
	Group       string       `json:"group,omitempty"`
	Background  string       `json:"background,omitempty"`
}

func NewMenuDocument(feed Feed) MenuDocument {
	doc := MenuDocument{
		GeneratedAt: feed.FetchedAt,
		Generation:  feed.Generation,
		Categories:  make([]MenuCategory, 0, len(feed.Menu)),
		Promotions:  make([]PromoCard, 0, len(feed.Promotions)),
	}
	for _, g := range feed.Menu {
		cat := MenuCategory{Name: g.Category, Icon: CategoryIcon(g.Category), Items: make([]MenuLine, 0, len(g.Items))}
		for _, it := range g.Items {
			cat.Items = append(cat.Items, MenuLine{
				Name:        it.Name,
				Subcategory: it.Subcategory,
				Description: it.Description,
				Price:       DisplayPrice(it),
				Promotion:   it.IsPromotion,
				Image:       it.ImageURL,
				Background:  it.BackgroundColor,
			})
		}
		doc.Categories = append(doc.Categories, cat)
	}
	for _, it := range feed.Promotions {
		doc.Promotions = append(doc.Promotions, NewPromoCard(it))
	}
	return doc
}

func NewPromoCard(it internal.Item) PromoCard {
	return PromoCard{
		Title:       SignageTitle(it),
		Name:        it.Name,
		Description: SignageDescription(it),
		Price:       DisplayPrice(it),
		Image:       it.ImageURL,
		Group:       it.SignageGroup,
		Background:  it.BackgroundColor,
	}
}

func MenuJSON(feed Feed) ([]byte, error) {
	return json.MarshalIndent(NewMenuDocument(feed), "", "  ")
}

// MenuXLSX renders a workbook with a Menu sheet and a Promos sheet.
func MenuXLSX(feed Feed) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	menu := f.GetSheetName(0)
	if err := f.SetSheetName(menu, "Menu"); err != nil {
		return nil, err
	}
	menu = "Menu"
	if _, err := f.NewSheet("Promos"); err != nil {
		return nil, err
	}

	writeRow(f, menu, 1, "Categoría", "Producto", "Subcategoría", "Descripción", "Precio", "Precio tachado", "Promo", "Orden", "Imagen")
	r := 2
	for _, g := range feed.Menu {
		for _, it := range g.Items {
			price := DisplayPrice(it)
			writeRow(f, menu, r, g.Category, it.Name, it.Subcategory, it.Description, price.Main, price.Struck, yesNo(it.IsPromotion), orderCell(it.SortOrder), it.ImageURL)
			r++
		}
	}

	writeRow(f, "Promos", 1, "Título", "Producto", "Descripción", "Precio", "Precio tachado", "Bloque", "Orden TV", "Segundos")
	for i, it := range feed.Promotions {
		card := NewPromoCard(it)
		writeRow(f, "Promos", i+2, card.Title, card.Name, card.Description, card.Price.Main, card.Price.Struck, card.Group, orderCell(it.SignageOrder), it.SignageDuration.Seconds())
	}

	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ExportMenuToXLSX(feed Feed, outputPath string) error {
	blob, err := MenuXLSX(feed)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, blob, 0o644)
}

func writeRow(f *excelize.File, sheetName string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
}

func yesNo(v bool) string {
	if v {
		return "sí"
	}
	return "no"
}

func orderCell(v float64) any {
	if v == internal.OrderUnset {
		return ""
	}
	return v
}
