package rotation

import (
	"time"

	"menuboard/internal"
)

// PlanOptions shapes the entry list built from a promotion set. Zero
// SummaryEvery or QREvery disables that interstitial.
type PlanOptions struct {
	DefaultDuration time.Duration
	SummaryEvery    int
	SummarySize     int
	SummaryDuration time.Duration
	SummaryTitle    string
	QREvery         int
	QRDuration      time.Duration
	// Line renders one summary line; the item name when nil.
	Line func(internal.Item) string
}

// BuildEntries turns promotions into rotation entries. After every
// SummaryEvery promos a summary lists the next SummarySize upcoming ones
// (wrapping around), and after every QREvery promos a QR screen follows.
func BuildEntries(items []internal.Item, opts PlanOptions) []Entry {
	if len(items) == 0 {
		return nil
	}
	line := opts.Line
	if line == nil {
		line = func(it internal.Item) string { return it.Name }
	}
	title := opts.SummaryTitle
	if title == "" {
		title = "PROMOS"
	}

	out := make([]Entry, 0, len(items))
	for i := range items {
		it := items[i]
		d := it.SignageDuration
		if d <= 0 {
			d = opts.DefaultDuration
		}
		out = append(out, Entry{Kind: KindPromo, Item: &it, Duration: d})

		shown := i + 1
		if opts.SummaryEvery > 0 && len(items) > 1 && shown%opts.SummaryEvery == 0 {
			out = append(out, Entry{
				Kind:     KindSummary,
				Title:    title,
				Lines:    upcoming(items, shown, opts.SummarySize, line),
				Duration: opts.SummaryDuration,
			})
		}
		if opts.QREvery > 0 && shown%opts.QREvery == 0 {
			out = append(out, Entry{Kind: KindQR, Duration: opts.QRDuration})
		}
	}
	return out
}

func upcoming(items []internal.Item, start, size int, line func(internal.Item) string) []string {
	if size <= 0 || size > len(items) {
		size = len(items)
	}
	lines := make([]string, 0, size)
	for k := 0; k < size; k++ {
		lines = append(lines, line(items[(start+k)%len(items)]))
	}
	return lines
}
