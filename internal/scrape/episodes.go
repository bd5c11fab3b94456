package scrape

import (
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sourcegraph/conc/pool"

	"github.com/topcine/topcinedb/internal/domain"
)

const (
	listSuffix  = "/list/"
	watchSuffix = "/watch/"
)

// episodeAnchor is one candidate entry scraped off a listing page before
// any network work happens for it.
type episodeAnchor struct {
	href  string
	title string
	text  string
}

// listURL derives the canonical episode-listing URL for a season.
func listURL(seasonURL string) string {
	if strings.HasSuffix(seasonURL, listSuffix) {
		return seasonURL
	}
	return strings.TrimRight(seasonURL, "/") + listSuffix
}

// watchURL derives an episode's watch-page URL from its detail link.
func watchURL(href string) string {
	if strings.HasSuffix(href, watchSuffix) {
		return href
	}
	return strings.TrimRight(href, "/") + watchSuffix
}

// resolveEpisodes enumerates a season's episodes across every listing page,
// resolves each episode's watch page, id, and servers concurrently, and
// returns the list sorted ascending by normalized number. A fetch failure
// yields an empty list; one bad anchor never aborts the season.
func (s *service) resolveEpisodes(run *domain.RunContext, seasonURL string) []domain.Episode {
	if run.Stopped() {
		return nil
	}

	byKey := make(map[string]domain.Episode)
	seenPages := make(map[string]bool)

	pageURL := listURL(seasonURL)
	for pageURL != "" && !seenPages[pageURL] && !run.Stopped() {
		seenPages[pageURL] = true

		doc, err := s.fetcher.Page(run.Ctx(), pageURL)
		if err != nil {
			s.log.Warn().Err(err).Str("url", pageURL).Msg("episode listing fetch failed")
			break
		}

		anchors := collectEpisodeAnchors(doc)
		resolved := s.resolveAnchors(run, anchors)

		// Merge across pages by natural key; the occurrence with more
		// discovered servers wins.
		for _, ep := range resolved {
			key := ep.Number.Label()
			if prev, dup := byKey[key]; !dup || len(ep.Servers) > len(prev.Servers) {
				byKey[key] = ep
			}
		}

		pageURL = nextPageURL(doc)
	}

	episodes := make([]domain.Episode, 0, len(byKey))
	for _, ep := range byKey {
		episodes = append(episodes, ep)
	}
	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].Number.SortValue() < episodes[j].Number.SortValue()
	})
	return episodes
}

// collectEpisodeAnchors enumerates episode anchors on one listing page:
// the primary selector first, then the looser heuristic of any anchor with
// an episode-number child element or an episode word in its title.
func collectEpisodeAnchors(doc *goquery.Document) []episodeAnchor {
	var anchors []episodeAnchor
	add := func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		title, _ := sel.Attr("title")
		anchors = append(anchors, episodeAnchor{
			href:  href,
			title: title,
			text:  strings.Join(strings.Fields(sel.Text()), " "),
		})
	}

	doc.Find(".allepcont .row > a").Each(add)
	if len(anchors) > 0 {
		return anchors
	}

	doc.Find("a").Each(func(i int, sel *goquery.Selection) {
		title, _ := sel.Attr("title")
		if sel.Find(".epnum").Length() > 0 || strings.Contains(title, "الحلقة") {
			add(i, sel)
		}
	})
	return anchors
}

// resolveAnchors normalizes numbers and drives the watch-page fetch, id
// extraction, and server discovery for one page of anchors, deduplicated
// page-locally by natural key with the first occurrence winning.
func (s *service) resolveAnchors(run *domain.RunContext, anchors []episodeAnchor) []domain.Episode {
	seen := make(map[string]bool)
	var picked []struct {
		anchor episodeAnchor
		num    domain.EpisodeNumber
	}
	for _, a := range anchors {
		num, ok := ParseEpisodeNumber(a.title, a.text)
		if !ok {
			// Distinct from transport failure: the markup gave us
			// nothing numeric, so the anchor is dropped.
			s.log.Warn().Str("href", a.href).Str("title", a.title).Msg("no episode number found, skipping anchor")
			continue
		}
		if seen[num.Label()] {
			continue
		}
		seen[num.Label()] = true
		picked = append(picked, struct {
			anchor episodeAnchor
			num    domain.EpisodeNumber
		}{a, num})
	}

	var mu sync.Mutex
	var episodes []domain.Episode

	p := pool.New().WithMaxGoroutines(s.episodeWorkers)
	for _, entry := range picked {
		entry := entry
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Str("href", entry.anchor.href).Msg("episode processing panicked, skipping entry")
				}
			}()
			if run.Stopped() {
				return
			}
			ep := s.resolveEpisode(run, entry.anchor, entry.num)
			mu.Lock()
			episodes = append(episodes, ep)
			mu.Unlock()
		})
	}
	p.Wait()
	return episodes
}

// resolveEpisode fetches one episode's watch page and discovers its
// servers. An unreachable watch page or missing id leaves the episode in
// the tree with no servers rather than dropping it.
func (s *service) resolveEpisode(run *domain.RunContext, a episodeAnchor, num domain.EpisodeNumber) domain.Episode {
	ep := domain.Episode{
		Number:   num,
		Title:    a.title,
		WatchURL: watchURL(a.href),
	}
	doc, err := s.fetcher.Page(run.Ctx(), ep.WatchURL)
	if err != nil {
		s.log.Debug().Err(err).Str("url", ep.WatchURL).Msg("watch page fetch failed")
		return ep
	}
	if id := ExtractEpisodeID(doc); id != "" {
		ep.Servers = s.discoverServers(run, id, ep.WatchURL)
	}
	s.log.Debug().Str("episode", num.Label()).Int("servers", len(ep.Servers)).Msg("episode resolved")
	return ep
}

// nextPageURL finds the next listing page, preferring the rel=next link
// over pagination anchors. Returns "" on the last page.
func nextPageURL(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="next"]`).First().Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := doc.Find("a.next, .paginate a.next, ul.page-numbers a.next").First().Attr("href"); ok && href != "" {
		return href
	}
	return ""
}
