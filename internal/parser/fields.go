package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/itch-scraper/internal/models"
)

var (
	pricePattern  = regexp.MustCompile(`[$€£]?\s*(\d[\d,]*(?:\.\d+)?)`)
	numberPattern = regexp.MustCompile(`\d[\d,]*`)
	ratingPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
	opaqueSchemes = []string{"mailto:", "data:", "javascript:", "tel:"}
	spacePattern  = regexp.MustCompile(`\s+`)
)

// platformMarkers is checked in order; each platform is appended at most once.
var platformMarkers = []struct {
	platform models.Platform
	selector string
}{
	{models.PlatformWindows, ".icon-windows, .icon-windows8, .fa-windows"},
	{models.PlatformMac, ".icon-apple, .fa-apple"},
	{models.PlatformLinux, ".icon-linux, .icon-tux, .fa-linux"},
	{models.PlatformAndroid, ".icon-android, .fa-android"},
	{models.PlatformWeb, ".icon-html5, .fa-html5, .web_flag"},
}

// ParsePrice returns nil for empty text, text mentioning "free" in any
// casing, and text without a number.
func ParsePrice(text string) *models.Price {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(strings.ToLower(text), "free") {
		return nil
	}

	match := pricePattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return nil
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return nil
	}

	return models.NewPrice(amount, text)
}

// ParsePlatforms looks for platform icons inside s only.
func ParsePlatforms(s *goquery.Selection) []models.Platform {
	var platforms []models.Platform
	for _, m := range platformMarkers {
		if s.Find(m.selector).Length() > 0 {
			platforms = append(platforms, m.platform)
		}
	}
	return platforms
}

// ParseNumber extracts the first comma-grouped integer in text.
func ParseNumber(text string) (int, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}

	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseRating accepts only numeric-shaped text, so "N/A" yields false.
func ParseRating(text string) (float64, bool) {
	match := ratingPattern.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToAbsoluteURL joins a relative url onto base with exactly one slash
// between them. URLs with a scheme and host, and opaque forms such as
// mailto:, are returned unchanged. "localhost:8080/x" is relative.
func ToAbsoluteURL(rawURL, base string) string {
	if isAbsoluteURL(rawURL) {
		return rawURL
	}

	if strings.HasPrefix(rawURL, "//") {
		scheme := "https:"
		if m := schemePattern.FindString(base); m != "" {
			scheme = m
		}
		return scheme + rawURL
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rawURL, "/")
}

func isAbsoluteURL(rawURL string) bool {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && u.Host != "" {
		return true
	}
	lower := strings.ToLower(rawURL)
	for _, prefix := range opaqueSchemes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ExtractIDFromURL returns the last non-empty path segment of rawURL, or
// rawURL itself when it has no segments. A URL with an empty path yields
// its host, e.g. "https://x.io/" gives "x.io".
func ExtractIDFromURL(rawURL string) string {
	path := rawURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if !strings.Contains(path, "/") {
		return rawURL
	}

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}

	return rawURL
}

// CleanText collapses whitespace runs into single spaces.
func CleanText(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
