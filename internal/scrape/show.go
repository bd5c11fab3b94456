package scrape

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/topcine/topcinedb/internal/domain"
)

// movieURLPattern matches the localized word for "film" in a show URL,
// either raw or as its percent-encoded byte sequence.
var movieURLPattern = regexp.MustCompile(`(?i)(/فيلم-|/film-|/movie-|%d9%81%d9%8a%d9%84%d9%85)`)

// RedflagError marks a completed-looking resolution judged too empty to
// persist: a structurally empty show would only pollute storage.
type RedflagError struct {
	Reason string
}

func (e *RedflagError) Error() string { return "redflag: " + e.Reason }

// IsRedflag reports whether err is a structural-emptiness failure.
func IsRedflag(err error) bool {
	var rf *RedflagError
	return errors.As(err, &rf)
}

// Classify determines a show's kind from its URL alone. The anime/series
// distinction is a label and never changes the resolution path.
func Classify(showURL string) domain.Kind {
	decoded := showURL
	if d, err := url.QueryUnescape(showURL); err == nil {
		decoded = d
	}
	if movieURLPattern.MatchString(showURL) || movieURLPattern.MatchString(decoded) {
		return domain.KindMovie
	}
	if strings.Contains(decoded, "انمي") || strings.Contains(strings.ToLower(decoded), "anime") {
		return domain.KindAnime
	}
	return domain.KindSeries
}

// Resolve scrapes one show URL into its full tree. force overrides URL
// classification for URL files of known kind. A nil show with non-nil
// error means the scrape failed; redflag failures carry a distinct reason.
func (s *service) Resolve(run *domain.RunContext, showURL string, force domain.Kind) (*domain.Show, error) {
	if run.Stopped() {
		return nil, errors.New("stop requested")
	}

	kind := Classify(showURL)
	if force != "" {
		kind = force
	}

	doc, err := s.fetcher.Page(run.Ctx(), showURL)
	if err != nil {
		return nil, errors.Wrap(err, "show page fetch failed")
	}

	show := s.extractDetails(doc)
	show.Kind = kind
	show.SourceURL = showURL

	if kind == domain.KindMovie {
		if err := s.resolveMovie(run, show); err != nil {
			return nil, err
		}
	} else {
		show.Seasons = s.resolveSeasons(run, showURL, doc, show.Poster)
		if err := checkSeriesShape(show); err != nil {
			return nil, err
		}
	}

	show.Trailer = s.resolveTrailer(run, show)
	return show, nil
}

// resolveMovie attaches servers directly to the show, no season tier.
func (s *service) resolveMovie(run *domain.RunContext, show *domain.Show) error {
	wURL := watchURL(show.SourceURL)
	doc, err := s.fetcher.Page(run.Ctx(), wURL)
	if err != nil {
		return errors.Wrap(err, "movie watch page fetch failed")
	}
	if id := ExtractEpisodeID(doc); id != "" {
		show.Servers = s.discoverServers(run, id, wURL)
	}
	if show.Year == nil {
		show.Year = ExtractYear(show.Title)
	}
	return nil
}

// checkSeriesShape is the quality gate: seasons with no episodes anywhere,
// or episodes with no server anywhere, indicate the site's markup changed
// or the show was removed; partial-but-nonempty results pass.
func checkSeriesShape(show *domain.Show) error {
	if len(show.Seasons) == 0 {
		return &RedflagError{Reason: "no seasons found"}
	}
	if show.TotalEpisodes() == 0 {
		return &RedflagError{Reason: "no episodes found"}
	}
	if !show.HasAnyServer() {
		return &RedflagError{Reason: "no servers found"}
	}
	return nil
}

// resolveTrailer asks the trailer AJAX endpoint for an embed, trying the
// show URL first and, for series, the first episode's watch URL. Always
// best-effort; failures leave the trailer empty.
func (s *service) resolveTrailer(run *domain.RunContext, show *domain.Show) string {
	sources := []string{show.SourceURL}
	for _, season := range show.Seasons {
		if len(season.Episodes) > 0 {
			sources = append(sources, season.Episodes[0].WatchURL)
			break
		}
	}
	endpoint := s.fetcher.Origin(show.SourceURL) + trailerEndpointPath

	for _, src := range sources {
		if run.Stopped() {
			return ""
		}
		form := url.Values{"href": {src}}
		body, err := s.fetcher.PostFragment(run.Ctx(), endpoint, show.SourceURL, form, false)
		if err != nil {
			s.log.Debug().Err(err).Str("source", src).Msg("trailer fetch failed")
			continue
		}
		if embed := firstAbsoluteIframe(body); embed != "" {
			return embed
		}
	}
	return ""
}

func firstAbsoluteIframe(fragment []byte) string {
	src := firstIframe(fragment)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return ""
}

// localized taxonomy keys mapped to the closed canonical metadata schema;
// anything not in this table is dropped.
var taxonomyKeys = map[string]string{
	"قسم المسلسل":  "category",
	"قسم الفيلم":   "category",
	"نوع المسلسل":  "genres",
	"نوع الفيلم":   "genres",
	"النوع":        "genres",
	"جودة المسلسل": "quality",
	"جودة الفيلم":  "quality",
	"عدد الحلقات":  "episode_count",
	"توقيت المسلسل": "duration",
	"توقيت الفيلم": "duration",
	"مدة الفيلم":   "duration",
	"موعد الصدور":  "release_year",
	"سنة الانتاج":  "release_year",
	"لغة المسلسل":  "language",
	"لغة الفيلم":   "language",
	"دولة المسلسل": "country",
	"دولة الفيلم":  "country",
	"المخرجين":     "directors",
	"المخرج":       "directors",
	"بطولة":        "cast",
}

// extractDetails pulls the shared show metadata off a rendered page.
// Every field is optional; a parse miss is a valid outcome, not an error.
func (s *service) extractDetails(doc *goquery.Document) *domain.Show {
	show := &domain.Show{Metadata: map[string]string{}}

	show.Title = CleanTitle(strings.TrimSpace(doc.Find("h1.post-title").First().Text()))

	if img := doc.Find("div.image img").First(); img.Length() > 0 {
		show.Poster, _ = img.Attr("src")
		if show.Poster == "" {
			show.Poster, _ = img.Attr("data-src")
		}
	}

	show.Synopsis = strings.TrimSpace(doc.Find("div.story p").First().Text())

	if badge := doc.Find(".UnderPoster .imdbR span").First(); badge.Length() > 0 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(badge.Text()), 64); err == nil {
			show.Rating = &v
		}
	}

	doc.Find("ul.RightTaxContent li").Each(func(_ int, li *goquery.Selection) {
		rawKey := strings.TrimSpace(li.Find("span").First().Text())
		rawKey = strings.Trim(rawKey, ":")
		key, known := taxonomyKeys[strings.TrimSpace(rawKey)]
		if !known {
			return
		}
		var values []string
		li.Find("a").Each(func(_ int, a *goquery.Selection) {
			if v := strings.TrimSpace(a.Text()); v != "" {
				values = append(values, v)
			}
		})
		value := strings.Join(values, ", ")
		if value == "" {
			value = strings.TrimSpace(li.Find("strong").First().Text())
		}
		if value != "" {
			show.Metadata[key] = value
		}
	})

	if year, ok := show.Metadata["release_year"]; ok {
		show.Year = ExtractYear(year)
	}
	return show
}
