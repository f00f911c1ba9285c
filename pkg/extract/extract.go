// Package extract turns HTML snapshots of chat emoji lists into harvest items.
package extract

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"emojiharvest/pkg/harvest"

	"github.com/PuerkitoBio/goquery"
)

const (
	// OffsetAttr carries an element's offset inside the scroll content.
	// The browser stamps it on headers and images before taking a snapshot.
	OffsetAttr = "data-emojiharvest-offset"

	// UnknownSection labels Discord emojis with no preceding header
	UnknownSection = "unknown"

	// UnnamedEmoji is used for Discord emojis without alt text
	UnnamedEmoji = "unnamed"
)

const (
	slackImageSelector   = `img[src*="emoji"]`
	discordImageSelector = `img[src*="emoji"], img[data-type="emoji"]`
	discordHeaderClass   = `[class^="headerLabel"]`
)

var (
	slackRowSelectors  = []string{`[data-qa="custom_emoji_item"]`, `.c-custom_emoji_list__item`, `.emoji_row`}
	slackNameSelectors = []string{`[data-qa="custom_emoji_name"]`, `.c-custom_emoji_list__name`, `.emoji_name`}
)

// Parse builds a document from an HTML snapshot
func Parse(markup string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}

// CleanName strips the colons chat clients wrap emoji names in
func CleanName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), ":", "")
}

// SlackItems returns every emoji image in the snapshot keyed by its URL.
// The name is taken from alt, then title, then the row's name element,
// then the file name in the URL. It may still be empty.
func SlackItems(doc *goquery.Document) []harvest.Item {
	var items []harvest.Item
	doc.Find(slackImageSelector).Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		items = append(items, harvest.Item{
			Key:     src,
			Name:    CleanName(slackName(img, src)),
			Locator: src,
		})
	})
	return items
}

func slackName(img *goquery.Selection, src string) string {
	if alt := strings.TrimSpace(img.AttrOr("alt", "")); alt != "" {
		return alt
	}
	if title := strings.TrimSpace(img.AttrOr("title", "")); title != "" {
		return title
	}
	for _, rowSel := range slackRowSelectors {
		row := img.Closest(rowSel)
		if row.Length() == 0 {
			continue
		}
		for _, nameSel := range slackNameSelectors {
			if text := strings.TrimSpace(row.Find(nameSel).First().Text()); text != "" {
				return text
			}
		}
		break
	}
	return nameFromURL(src)
}

// nameFromURL returns the file name of a URL without its extension
func nameFromURL(src string) string {
	p := src
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "/" || base == "." {
		return ""
	}
	name, _, _ := strings.Cut(base, ".")
	return name
}

// DiscordItems walks the snapshot in document order and labels each emoji
// with the nearest preceding section header. When no header precedes an
// emoji, its stamped offset is matched against known sections instead.
// Items are keyed by name and URL since Discord reuses URLs across names.
func DiscordItems(doc *goquery.Document, known []harvest.Section) []harvest.Item {
	var items []harvest.Item
	current := ""
	doc.Find(discordHeaderClass + ", " + discordImageSelector).Each(func(_ int, s *goquery.Selection) {
		if !s.Is("img") {
			current = strings.TrimSpace(s.Text())
			return
		}
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			return
		}
		name := CleanName(s.AttrOr("alt", ""))
		if name == "" {
			name = UnnamedEmoji
		}
		items = append(items, harvest.Item{
			Key:     name + "\x00" + src,
			Name:    name,
			Locator: src,
			Section: discordSection(s, current, known),
		})
	})
	return items
}

func discordSection(img *goquery.Selection, current string, known []harvest.Section) string {
	if current != "" {
		return current
	}
	if off, ok := offsetOf(img); ok {
		if name := harvest.SectionOf(known, off); name != "" {
			return name
		}
	}
	return UnknownSection
}

// SectionHeaders returns the rendered Discord section headers that carry an offset
func SectionHeaders(doc *goquery.Document) []harvest.Section {
	var sections []harvest.Section
	doc.Find(discordHeaderClass).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		off, ok := offsetOf(s)
		if name == "" || !ok {
			return
		}
		sections = append(sections, harvest.Section{Name: name, Offset: off})
	})
	return sections
}

func offsetOf(s *goquery.Selection) (float64, bool) {
	raw, ok := s.Attr(OffsetAttr)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
