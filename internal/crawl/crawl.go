package crawl

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/domain"
	"github.com/topcine/topcinedb/internal/scrape"
)

// Service harvests show URLs from the site's paginated listing sections
// into the URL files a scrape run consumes.
type Service interface {
	Harvest(section string, startPage, endPage int) ([]string, error)
}

type service struct {
	log     zerolog.Logger
	baseURL string
	delay   time.Duration
}

func NewService(log zerolog.Logger, cfg *domain.Config) Service {
	return &service{
		log:     log.With().Str("module", "crawl").Logger(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		delay:   cfg.RequestDelay,
	}
}

// Harvest walks /<section>/page/<n>/ for n in [startPage, endPage] and
// collects every show link off the post grids. The movies section is
// filtered to movie-classified URLs; percent-encoded Arabic in hrefs is
// decoded before storage.
func (s *service) Harvest(section string, startPage, endPage int) ([]string, error) {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}

	var mu sync.Mutex
	seen := make(map[string]bool)

	c := colly.NewCollector(
		colly.AllowedDomains(base.Host),
		colly.Async(true),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 8,
		Delay:       s.delay,
	})

	c.OnHTML("ul.Posts--List div.Small--Box a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if href == "" {
			return
		}
		if decoded, err := url.QueryUnescape(href); err == nil {
			href = decoded
		}
		if section == "movies" && scrape.Classify(href) != domain.KindMovie {
			return
		}
		mu.Lock()
		seen[href] = true
		mu.Unlock()
	})

	c.OnRequest(func(r *colly.Request) {
		s.log.Debug().Str("url", r.URL.String()).Msg("visiting")
	})
	c.OnError(func(r *colly.Response, err error) {
		s.log.Warn().Err(err).Str("url", r.Request.URL.String()).Msg("listing page failed")
	})

	for page := startPage; page <= endPage; page++ {
		c.Visit(fmt.Sprintf("%s/%s/page/%d/", s.baseURL, section, page))
	}
	c.Wait()

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	s.log.Info().Str("section", section).Int("urls", len(urls)).Msg("harvest finished")
	return urls, nil
}
