package scrape

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/topcine/topcinedb/internal/domain"
)

// resolveSeasons enumerates a show's seasons from its page and resolves
// each season's episodes. Season cards are preferred; page-wide anchors
// matching a season pattern are the fallback; a single implicit season at
// the show URL itself is synthesized when the page shows neither, so a
// single-season show still produces a valid tree.
func (s *service) resolveSeasons(run *domain.RunContext, showURL string, doc *goquery.Document, showPoster string) []domain.Season {
	seen := make(map[string]bool)
	var seasons []domain.Season

	doc.Find("div.Small--Box.Season").Each(func(_ int, card *goquery.Selection) {
		a := card.Find("a").First()
		href, ok := a.Attr("href")
		if !ok || href == "" || seen[href] {
			return
		}
		seen[href] = true

		title, _ := a.Attr("title")
		if title == "" {
			title = strings.TrimSpace(a.Text())
		}
		num := ExtractNumber(title)
		if num < 0 {
			num = 1
		}

		poster := ""
		if img := a.Find("img").First(); img.Length() > 0 {
			poster, _ = img.Attr("src")
			if poster == "" {
				poster, _ = img.Attr("data-src")
			}
		}
		seasons = append(seasons, domain.Season{Number: num, Poster: poster, URL: href})
	})

	if len(seasons) == 0 {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			text := strings.ToLower(strings.TrimSpace(a.Text()))
			if !strings.Contains(href, "/series/") {
				return
			}
			if !strings.Contains(href, "الموسم") && !strings.Contains(text, "season") {
				return
			}
			if seen[href] {
				return
			}
			seen[href] = true

			title, _ := a.Attr("title")
			num := ExtractNumber(title)
			if num < 0 {
				num = ExtractNumber(href)
			}
			if num < 0 {
				num = 1
			}
			seasons = append(seasons, domain.Season{Number: num, URL: href})
		})
	}

	if len(seasons) == 0 {
		seasons = append(seasons, domain.Season{Number: 1, Poster: showPoster, URL: showURL})
	}

	sort.Slice(seasons, func(i, j int) bool { return seasons[i].Number < seasons[j].Number })

	for i := range seasons {
		if run.Stopped() {
			break
		}
		seasons[i].Episodes = s.resolveEpisodes(run, seasons[i].URL)
	}
	return seasons
}
