package pipeline

import (
	"time"

	"menuboard/internal"
	"menuboard/internal/catalog"
	"menuboard/internal/config"
	"menuboard/internal/sheet"
)

// Feed is everything one fetch cycle produced.
type Feed struct {
	Generation uint64                   `json:"generation"`
	TraceID    string                   `json:"traceId"`
	Provider   string                   `json:"provider"`
	FetchedAt  time.Time                `json:"fetchedAt"`
	Changed    bool                     `json:"changed"`
	Items      []internal.Item          `json:"items"`
	Menu       []internal.CategoryGroup `json:"menu"`
	Promotions []internal.Item          `json:"promotions"`
}

// FeedBuilder turns a parsed table into a Feed without any I/O.
type FeedBuilder struct {
	Normalizer Normalizer
	Images     *ImageResolver
}

func NewFeedBuilder(cfg config.Config) FeedBuilder {
	return FeedBuilder{Normalizer: NewNormalizer(cfg), Images: NewImageResolver(cfg)}
}

func (b FeedBuilder) Build(table sheet.Table) Feed {
	items := b.Normalizer.NormalizeTable(table.Header, table.Rows)
	if b.Images != nil {
		items = b.Images.Apply(items)
	}
	repo := catalog.NewRepository(items)
	return Feed{
		Items:      repo.Items(),
		Menu:       repo.Groups(),
		Promotions: repo.Promotions(),
	}
}
