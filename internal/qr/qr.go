// Package qr builds the QR links shown on the signage screen. The images
// themselves come from an external QR endpoint.
package qr

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"menuboard/internal/config"
)

type Link struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Target   string `json:"target"`
	ImageURL string `json:"imageUrl"`
}

// Links returns the configured destinations in display order: menu,
// WhatsApp, Instagram. Blank ones are skipped.
func Links(cfg config.Config) []Link {
	var out []Link
	add := func(name, label, target string) {
		if target == "" {
			return
		}
		out = append(out, Link{Name: name, Label: label, Target: target, ImageURL: ImageURL(cfg.QREndpoint, cfg.QRSize, target)})
	}
	add("menu", "MENÚ", strings.TrimSpace(cfg.MenuURL))
	add("whatsapp", "WHATSAPP", WhatsAppURL(cfg.WhatsAppNumber))
	add("instagram", "INSTAGRAM", strings.TrimSpace(cfg.InstagramURL))
	return out
}

// WhatsAppURL builds the wa.me deep link from a phone number in any
// notation. Empty when the number has no digits.
func WhatsAppURL(number string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}

// ImageURL is the chart-style QR image request for target.
func ImageURL(endpoint string, size int, target string) string {
	if size <= 0 {
		size = 220
	}
	s := strconv.Itoa(size)
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "cht=qr&chs=" + s + "x" + s + "&chl=" + url.QueryEscape(target)
}
