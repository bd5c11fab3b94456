package scrape

import (
	"bytes"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/topcine/topcinedb/internal/domain"
	"github.com/topcine/topcinedb/internal/fetch"
)

const (
	serverEndpointPath  = "/wp-content/themes/movies2023/Ajaxat/Single/Server.php"
	trailerEndpointPath = "/wp-content/themes/movies2023/Ajaxat/Home/LoadTrailer.php"
)

// discoverServers probes the per-episode server endpoint for every slot in
// [0, probeCount) concurrently and keeps the slots that answer with an
// iframe. Unreachable or empty slots are silently dropped; the fetch layer
// already retried transient 5xx, so no retry happens here. Zero results is
// a valid outcome.
func (s *service) discoverServers(run *domain.RunContext, episodeID, referer string) []domain.Server {
	if run.Stopped() || episodeID == "" {
		return nil
	}
	endpoint := s.fetcher.Origin(referer) + serverEndpointPath

	var mu sync.Mutex
	var servers []domain.Server

	workers := s.probeCount
	if workers > 12 {
		workers = 12
	}
	p := pool.New().WithMaxGoroutines(workers)
	for i := 0; i < s.probeCount; i++ {
		i := i
		p.Go(func() {
			if run.Stopped() {
				return
			}
			form := url.Values{
				"id": {episodeID},
				"i":  {strconv.Itoa(i)},
			}
			body, err := s.fetcher.PostFragment(run.Ctx(), endpoint, referer, form, true)
			if err != nil {
				return
			}
			src := firstIframe(body)
			if src == "" {
				return
			}
			mu.Lock()
			servers = append(servers, domain.Server{Index: i, EmbedURL: src})
			mu.Unlock()
		})
	}
	p.Wait()

	sort.Slice(servers, func(i, j int) bool { return servers[i].Index < servers[j].Index })
	return servers
}

func firstIframe(fragment []byte) string {
	return fetch.FirstIframeSrc(bytes.NewReader(fragment))
}
