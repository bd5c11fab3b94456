package domain

// Kind classifies a show. Anime vs series is a label only; both carry a
// season/episode tree.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
	KindAnime  Kind = "anime"
)

// Show is the top-level catalog entity. SourceURL is the identity key:
// resolving the same URL twice must yield the same stored show.
type Show struct {
	ID        int64
	Title     string
	Kind      Kind
	Poster    string
	Synopsis  string
	Rating    *float64
	Trailer   string
	Year      *int
	Metadata  map[string]string
	SourceURL string

	// Seasons is populated for series/anime, Servers for movies.
	Seasons []Season
	Servers []Server
}

// Season groups episodes under a show. Number defaults to 1 when the
// source markup gives nothing better.
type Season struct {
	ID       int64
	Number   int
	Poster   string
	URL      string
	Episodes []Episode
}

// Episode is one unit of content under a season.
type Episode struct {
	ID       int64
	Number   EpisodeNumber
	Title    string
	WatchURL string
	Servers  []Server
}

// Server is one discovered streaming embed. Index is the probe slot it
// answered at, not the server number shown on the site.
type Server struct {
	Index    int
	EmbedURL string
}

// TotalEpisodes counts episodes across all seasons.
func (s *Show) TotalEpisodes() int {
	n := 0
	for _, season := range s.Seasons {
		n += len(season.Episodes)
	}
	return n
}

// HasAnyServer reports whether at least one episode (or the movie itself)
// carries at least one discovered server.
func (s *Show) HasAnyServer() bool {
	if len(s.Servers) > 0 {
		return true
	}
	for _, season := range s.Seasons {
		for _, ep := range season.Episodes {
			if len(ep.Servers) > 0 {
				return true
			}
		}
	}
	return false
}
