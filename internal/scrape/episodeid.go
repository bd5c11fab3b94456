package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var scriptEpisodeID = regexp.MustCompile(`"id"\s*:\s*"(\d+)"`)

// ExtractEpisodeID pulls the internal episode id out of a rendered watch
// page. First choice is the data-id attribute on the server-list items;
// fallback is a scan of inline script blocks for the JSON-ish id field.
// Returns "" when neither is present, which is expected for malformed or
// already-removed pages.
func ExtractEpisodeID(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	if id, exists := doc.Find(".watch--servers--list li.server--item[data-id]").First().Attr("data-id"); exists {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := scriptEpisodeID.FindStringSubmatch(s.Text()); m != nil {
			found = m[1]
			return false
		}
		return true
	})
	return found
}
