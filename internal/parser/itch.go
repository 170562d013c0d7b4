package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/itch-scraper/internal/models"
)

// Selectors for itch.io markup. Layout drift should only require edits here.
const (
	selGameCell      = ".game_cell"
	selGameCellData  = ".game_cell_data"
	selCellTitle     = ".game_title, .title"
	selCellLink      = ".game_link, a"
	selCellImage     = ".game_thumb img, img"
	selCellPrice     = ".price_value, .price, .game_price"
	selCellDeveloper = ".game_author, .author"
	selPagerLabel    = ".pager_label"
	selNextPage      = ".next_page"

	selTitle         = ".game_title"
	selTitleFallback = "h1"
	selDescription   = ".formatted_description, .user_formatted"
	selDeveloper     = ".game_author a, .user_name"
	selCover         = ".game_thumb img, .header_image img, .cover_image img"
	selOGImage       = `meta[property="og:image"]`
	selGenres        = ".game_genre, .genre_tag, .classification_tag"
	selTags          = ".game_tag_link, .tag"
	selPrice         = ".buy_btn .price, .price"
	selOriginalPrice = ".original_price"
	selScreenshots   = ".screenshot img, .screenshot_list img"
	selScreenshotRef = ".screenshot_list a"
	selRating        = ".aggregate_rating, .rating_value"
	selRatingCount   = ".rating_count"
	selReleaseDate   = ".game_info_panel_widget abbr, .release_date abbr"
	selInfoPanelRows = ".game_info_panel_widget table tr"
)

var pagerPattern = regexp.MustCompile(`Page (\d+) of (\d+)`)

// videoHosts is matched by substring against iframe sources, in this order.
var videoHosts = [][]string{
	{"youtube.com", "youtu.be"},
	{"vimeo.com"},
}

type ItchParser struct {
	baseURL string
}

func NewItchParser(baseURL string) *ItchParser {
	return &ItchParser{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *ItchParser) ParseListing(html string) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	cells := doc.Find(selGameCell)
	if cells.Length() == 0 {
		cells = doc.Find(selGameCellData)
	}

	listing := &Listing{
		Results: make([]models.GameResult, 0, cells.Length()),
	}

	cells.Each(func(i int, s *goquery.Selection) {
		game, skip := p.parseGameCell(s)
		if skip != "" {
			listing.Skipped = append(listing.Skipped, Skip{Index: i, Reason: skip})
			return
		}
		listing.Results = append(listing.Results, game)
	})

	listing.Pagination = p.parsePagination(doc)

	return listing, nil
}

// parseGameCell reads one listing cell without looking outside of s. A
// non-empty skip reason means the cell is dropped.
func (p *ItchParser) parseGameCell(s *goquery.Selection) (models.GameResult, string) {
	title := CleanText(s.Find(selCellTitle).First().Text())
	if title == "" {
		return models.GameResult{}, "missing title"
	}

	href := strings.TrimSpace(s.Find(selCellLink).First().AttrOr("href", ""))
	if href == "" {
		return models.GameResult{}, "missing url"
	}
	url := ToAbsoluteURL(href, p.baseURL)

	price := ParsePrice(s.Find(selCellPrice).First().Text())

	game := models.GameResult{
		ID:        ExtractIDFromURL(url),
		Title:     title,
		URL:       url,
		Price:     price,
		IsFree:    price == nil,
		Platforms: ParsePlatforms(s),
		Developer: CleanText(s.Find(selCellDeveloper).First().Text()),
	}

	if src := imageSource(s.Find(selCellImage).First()); src != "" {
		game.Image = ToAbsoluteURL(src, p.baseURL)
	}

	return game, ""
}

func (p *ItchParser) parsePagination(doc *goquery.Document) models.Pagination {
	label := doc.Find(selPagerLabel).Text()
	if match := pagerPattern.FindStringSubmatch(label); match != nil {
		current, err1 := strconv.Atoi(match[1])
		total, err2 := strconv.Atoi(match[2])
		if err1 == nil && err2 == nil {
			return models.Pagination{
				HasNextPage: models.BoolPtr(current < total),
				TotalPages:  models.IntPtr(total),
			}
		}
	}

	return models.Pagination{
		HasNextPage: models.BoolPtr(doc.Find(selNextPage).Length() > 0),
	}
}

func (p *ItchParser) ParseGameInfo(html string, pageURL string) (*Detail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := CleanText(doc.Find(selTitle).First().Text())
	if title == "" {
		title = CleanText(doc.Find(selTitleFallback).First().Text())
	}
	if title == "" {
		return nil, ErrMissingTitle
	}

	info := &models.GameInfo{
		ID:    ExtractIDFromURL(pageURL),
		Title: title,
		URL:   pageURL,
	}
	panel := p.infoPanel(doc)

	// Each group fills its own fields; absence never blocks the others.
	info.Description = strings.TrimSpace(doc.Find(selDescription).First().Text())
	info.Developer = p.extractDeveloper(doc, panel)
	info.Publisher = panelText(panel, "publisher")
	info.Cover, info.Image = p.extractImages(doc)
	info.Platforms = p.extractPlatforms(doc, panel)
	info.Genres = p.extractGenres(doc, panel)
	info.Tags = p.extractTags(doc, panel)
	p.extractPricing(doc, info)
	info.Screenshots = p.extractScreenshots(doc)
	for _, v := range p.extractVideos(doc) {
		info.Videos = append(info.Videos, v.URL)
	}
	info.Rating, info.RatingCount = p.extractRating(doc)
	info.ReleaseDate = p.extractReleaseDate(doc, panel)

	return &Detail{Info: info, Missing: missingGroups(info)}, nil
}

// infoPanel maps lowercased row labels of the info table to their value cell.
func (p *ItchParser) infoPanel(doc *goquery.Document) map[string]*goquery.Selection {
	rows := make(map[string]*goquery.Selection)
	doc.Find(selInfoPanelRows).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(CleanText(cells.Eq(0).Text()))
		if label != "" {
			rows[label] = cells.Eq(1)
		}
	})
	return rows
}

func panelText(panel map[string]*goquery.Selection, label string) string {
	if s, ok := panel[label]; ok {
		return CleanText(s.Text())
	}
	return ""
}

func panelLinks(panel map[string]*goquery.Selection, label string) []string {
	s, ok := panel[label]
	if !ok {
		return nil
	}
	return collectTexts(s.Find("a"))
}

func (p *ItchParser) extractDeveloper(doc *goquery.Document, panel map[string]*goquery.Selection) string {
	if dev := CleanText(doc.Find(selDeveloper).First().Text()); dev != "" {
		return dev
	}
	if authors := panelLinks(panel, "author"); len(authors) > 0 {
		return authors[0]
	}
	return panelText(panel, "author")
}

func (p *ItchParser) extractImages(doc *goquery.Document) (cover, image string) {
	if src := imageSource(doc.Find(selCover).First()); src != "" {
		cover = ToAbsoluteURL(src, p.baseURL)
	}
	if og := strings.TrimSpace(doc.Find(selOGImage).First().AttrOr("content", "")); og != "" {
		image = ToAbsoluteURL(og, p.baseURL)
	}

	if cover == "" {
		cover = image
	}
	if image == "" {
		image = cover
	}
	return cover, image
}

func (p *ItchParser) extractPlatforms(doc *goquery.Document, panel map[string]*goquery.Selection) []models.Platform {
	if platforms := ParsePlatforms(doc.Selection); len(platforms) > 0 {
		return platforms
	}

	var platforms []models.Platform
	seen := make(map[models.Platform]bool)
	for _, name := range panelLinks(panel, "platforms") {
		if pl, ok := platformFromName(name); ok && !seen[pl] {
			seen[pl] = true
			platforms = append(platforms, pl)
		}
	}
	return platforms
}

func platformFromName(name string) (models.Platform, bool) {
	switch strings.ToLower(name) {
	case "windows":
		return models.PlatformWindows, true
	case "macos", "mac", "osx":
		return models.PlatformMac, true
	case "linux":
		return models.PlatformLinux, true
	case "android":
		return models.PlatformAndroid, true
	case "html5", "web", "html":
		return models.PlatformWeb, true
	case "ios":
		return models.PlatformIOS, true
	}
	return "", false
}

func (p *ItchParser) extractGenres(doc *goquery.Document, panel map[string]*goquery.Selection) []string {
	genres := collectTexts(doc.Find(selGenres))
	if len(genres) == 0 {
		genres = panelLinks(panel, "genre")
	}
	return canonicalGenres(genres)
}

// canonicalGenres rewrites curated genres to their display spelling and
// drops duplicates that only differed in casing. Other genres pass through.
func canonicalGenres(names []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range names {
		if g, ok := models.LookupGenre(name); ok {
			name = string(g)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (p *ItchParser) extractTags(doc *goquery.Document, panel map[string]*goquery.Selection) []string {
	if tags := collectTexts(doc.Find(selTags)); len(tags) > 0 {
		return tags
	}
	return panelLinks(panel, "tags")
}

func (p *ItchParser) extractPricing(doc *goquery.Document, info *models.GameInfo) {
	info.Price = ParsePrice(doc.Find(selPrice).First().Text())
	info.IsFree = info.Price == nil

	original := doc.Find(selOriginalPrice)
	if original.Length() == 0 {
		return
	}
	if op := ParsePrice(original.First().Text()); op != nil {
		info.OriginalPrice = op
		info.IsOnSale = true
	}
}

func (p *ItchParser) extractScreenshots(doc *goquery.Document) []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(src string) {
		if src == "" {
			return
		}
		abs := ToAbsoluteURL(src, p.baseURL)
		if !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	}

	doc.Find(selScreenshots).Each(func(_ int, img *goquery.Selection) {
		add(imageSource(img))
	})

	if len(urls) == 0 {
		doc.Find(selScreenshotRef).Each(func(_ int, a *goquery.Selection) {
			add(strings.TrimSpace(a.AttrOr("href", "")))
		})
	}

	return urls
}

// extractVideos tags every embedded player as a trailer; the page does not
// say which footage is which.
func (p *ItchParser) extractVideos(doc *goquery.Document) []models.Video {
	var videos []models.Video
	iframes := doc.Find("iframe")

	for _, hosts := range videoHosts {
		iframes.Each(func(_ int, f *goquery.Selection) {
			src := strings.TrimSpace(f.AttrOr("src", ""))
			if src == "" {
				src = strings.TrimSpace(f.AttrOr("data-src", ""))
			}
			for _, host := range hosts {
				if strings.Contains(src, host) {
					videos = append(videos, models.Video{
						URL:  ToAbsoluteURL(src, p.baseURL),
						Type: models.VideoTrailer,
					})
					return
				}
			}
		})
	}

	return videos
}

func (p *ItchParser) extractRating(doc *goquery.Document) (*float64, *int) {
	var rating *float64
	el := doc.Find(selRating).First()
	if v, ok := ParseRating(el.AttrOr("title", "")); ok {
		rating = models.Float64Ptr(v)
	} else if v, ok := ParseRating(ownRatingText(el)); ok {
		rating = models.Float64Ptr(v)
	}

	var count *int
	if n, ok := ParseNumber(doc.Find(selRatingCount).First().Text()); ok {
		count = models.IntPtr(n)
	}

	return rating, count
}

// ownRatingText is the widget text without the nested vote count, which
// would otherwise be read as the rating.
func ownRatingText(el *goquery.Selection) string {
	c := el.Clone()
	c.Find(selRatingCount).Remove()
	return c.Text()
}

func (p *ItchParser) extractReleaseDate(doc *goquery.Document, panel map[string]*goquery.Selection) string {
	for _, label := range []string{"release date", "published"} {
		s, ok := panel[label]
		if !ok {
			continue
		}
		abbr := s.Find("abbr").First()
		if title := strings.TrimSpace(abbr.AttrOr("title", "")); title != "" {
			return title
		}
		if text := CleanText(s.Text()); text != "" {
			return text
		}
	}

	return strings.TrimSpace(doc.Find(selReleaseDate).First().AttrOr("title", ""))
}

// imageSource prefers src and falls back to the lazy-loading attributes.
func imageSource(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-lazy_src", "data-src"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

// collectTexts returns the non-empty, de-duplicated texts of s in document order.
func collectTexts(s *goquery.Selection) []string {
	var out []string
	seen := make(map[string]bool)
	s.Each(func(_ int, el *goquery.Selection) {
		text := CleanText(el.Text())
		if text != "" && !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	})
	return out
}

func missingGroups(info *models.GameInfo) []string {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}

	check("description", info.Description != "")
	check("developer", info.Developer != "")
	check("cover", info.Cover != "")
	check("platforms", len(info.Platforms) > 0)
	check("genres", len(info.Genres) > 0)
	check("tags", len(info.Tags) > 0)
	check("price", info.Price != nil)
	check("screenshots", len(info.Screenshots) > 0)
	check("videos", len(info.Videos) > 0)
	check("rating", info.Rating != nil)
	check("release_date", info.ReleaseDate != "")

	return missing
}
