package pipeline

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"menuboard/internal"
	"menuboard/internal/config"
	"menuboard/internal/util"
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true, ".svg": true}

// ImageResolver turns the Image cell into a URL under BaseURL. A blank cell
// resolves to Fallback unless auto-matching finds a file in Dir whose name
// resembles the product.
type ImageResolver struct {
	BaseURL   string
	Fallback  string
	AutoMatch bool
	Threshold float64

	byStem      map[string]string
	stems       map[string]string
	tokenToFile map[string]map[string]struct{}
}

func NewImageResolver(cfg config.Config) *ImageResolver {
	r := &ImageResolver{
		BaseURL:   cfg.ImageBaseURL,
		Fallback:  cfg.FallbackImage,
		AutoMatch: cfg.ImageAutoMatch,
		Threshold: cfg.ImageMatchThreshold,
	}
	var files []string
	if cfg.ImageAutoMatch && cfg.ImageDir != "" {
		entries, err := os.ReadDir(cfg.ImageDir)
		if err == nil {
			for _, e := range entries {
				if !e.IsDir() {
					files = append(files, e.Name())
				}
			}
		}
	}
	r.index(files)
	return r
}

func (r *ImageResolver) index(files []string) {
	r.byStem = map[string]string{}
	r.stems = map[string]string{}
	r.tokenToFile = map[string]map[string]struct{}{}
	sort.Strings(files)
	for _, name := range files {
		ext := strings.ToLower(filepath.Ext(name))
		if !imageExts[ext] {
			continue
		}
		stem := util.NormalizeName(strings.TrimSuffix(name, filepath.Ext(name)))
		if stem == "" {
			continue
		}
		if _, ok := r.byStem[stem]; !ok {
			r.byStem[stem] = name
		}
		r.stems[name] = stem
		for _, token := range util.Tokenize(stem) {
			if _, ok := r.tokenToFile[token]; !ok {
				r.tokenToFile[token] = map[string]struct{}{}
			}
			r.tokenToFile[token][name] = struct{}{}
		}
	}
}

// Resolve never fails: anything it cannot place becomes the fallback.
func (r *ImageResolver) Resolve(it internal.Item) string {
	if name := strings.TrimSpace(it.Image); name != "" {
		if isAbsoluteURL(name) {
			return name
		}
		return r.url(name)
	}
	if r.AutoMatch {
		if name, ok := r.match(it.Name); ok {
			return r.url(name)
		}
	}
	return r.Fallback
}

// Apply returns a copy of items with ImageURL filled in.
func (r *ImageResolver) Apply(items []internal.Item) []internal.Item {
	out := make([]internal.Item, len(items))
	for i, it := range items {
		it.ImageURL = r.Resolve(it)
		out[i] = it
	}
	return out
}

func (r *ImageResolver) match(product string) (string, bool) {
	query := util.NormalizeName(product)
	if query == "" {
		return "", false
	}
	if name, ok := r.byStem[query]; ok {
		return name, true
	}

	queryTokens := util.Tokenize(query)
	candidates := map[string]struct{}{}
	for _, token := range queryTokens {
		for name := range r.tokenToFile[token] {
			candidates[name] = struct{}{}
		}
	}

	best, bestScore := "", 0.0
	for name := range candidates {
		stem := r.stems[name]
		score := scoreName(query, stem, queryTokens, util.Tokenize(stem))
		if score > bestScore || (score == bestScore && name < best) {
			best, bestScore = name, score
		}
	}
	if best == "" || bestScore < r.Threshold {
		return "", false
	}
	return best, true
}

func (r *ImageResolver) url(name string) string {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	parts := strings.Split(clean, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(r.BaseURL, "/") + "/" + strings.Join(parts, "/")
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func scoreName(query, candidate string, queryTokens, candidateTokens []string) float64 {
	dice := util.DiceCoefficient(query, candidate)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return dice
	}

	set := map[string]struct{}{}
	for _, t := range candidateTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range queryTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	tokenScore := float64(overlap) / float64(len(queryTokens))
	return 0.65*dice + 0.35*tokenScore
}
