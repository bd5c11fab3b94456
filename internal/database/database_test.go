package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleShow(url string) *domain.Show {
	rating := 8.6
	year := 2008
	return &domain.Show{
		Title:    "Foo",
		Kind:     domain.KindSeries,
		Poster:   "https://img.example/foo.jpg",
		Synopsis: "A very good show.",
		Rating:   &rating,
		Year:     &year,
		Metadata: map[string]string{
			"genres": "دراما, جريمة",
			"cast":   "Somebody",
		},
		SourceURL: url,
	}
}

func TestInsertShowIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewShowRepo(zerolog.Nop(), db)
	ctx := context.Background()

	id1, err := repo.InsertShow(ctx, sampleShow("https://example.com/series/foo/"))
	if err != nil {
		t.Fatalf("InsertShow() error = %v", err)
	}
	id2, err := repo.InsertShow(ctx, sampleShow("https://example.com/series/foo/"))
	if err != nil {
		t.Fatalf("second InsertShow() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("duplicate source URL produced new id: %d != %d", id1, id2)
	}

	id3, err := repo.InsertShow(ctx, sampleShow("https://example.com/series/bar/"))
	if err != nil {
		t.Fatalf("InsertShow() error = %v", err)
	}
	if id3 == id1 {
		t.Error("distinct shows share an id")
	}
}

func TestCountByKind(t *testing.T) {
	db := newTestDB(t)
	repo := NewShowRepo(zerolog.Nop(), db)
	ctx := context.Background()

	series := sampleShow("https://example.com/series/foo/")
	movie := sampleShow("https://example.com/film-bar/")
	movie.Kind = domain.KindMovie

	if _, err := repo.InsertShow(ctx, series); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.InsertShow(ctx, movie); err != nil {
		t.Fatal(err)
	}

	counts, err := repo.CountByKind(ctx)
	if err != nil {
		t.Fatalf("CountByKind() error = %v", err)
	}
	if counts[domain.KindSeries] != 1 || counts[domain.KindMovie] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestInsertSeasonsTreeAndCatalog(t *testing.T) {
	db := newTestDB(t)
	repo := NewShowRepo(zerolog.Nop(), db)
	ctx := context.Background()

	showID, err := repo.InsertShow(ctx, sampleShow("https://example.com/series/foo/"))
	if err != nil {
		t.Fatal(err)
	}

	seasons := []domain.Season{{
		Number: 1,
		Episodes: []domain.Episode{
			{Number: domain.Normal(2), Servers: []domain.Server{{Index: 3, EmbedURL: "https://embed.example/a"}}},
			{Number: domain.Special()},
			{Number: domain.Fractional(2.5)},
			{Number: domain.Merged(12, 13), Servers: []domain.Server{
				{Index: 0, EmbedURL: "https://embed.example/b"},
				{Index: 4, EmbedURL: "https://embed.example/c"},
			}},
		},
	}}
	if err := repo.InsertSeasonsTree(ctx, showID, seasons); err != nil {
		t.Fatalf("InsertSeasonsTree() error = %v", err)
	}

	shows, err := repo.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(shows) != 1 {
		t.Fatalf("got %d shows, want 1", len(shows))
	}
	show := shows[0]
	if show.Rating == nil || *show.Rating != 8.6 {
		t.Errorf("Rating = %v", show.Rating)
	}
	if len(show.Seasons) != 1 {
		t.Fatalf("got %d seasons, want 1", len(show.Seasons))
	}

	eps := show.Seasons[0].Episodes
	if len(eps) != 4 {
		t.Fatalf("got %d episodes, want 4", len(eps))
	}
	// Stored episode_number is the sort value, so the special comes first.
	wantLabels := []string{"special", "2", "2.5", "12+13"}
	for i, ep := range eps {
		if ep.Number.Label() != wantLabels[i] {
			t.Errorf("episode %d label = %q, want %q", i, ep.Number.Label(), wantLabels[i])
		}
	}
	if eps[3].Number.Kind != domain.NumberMerged {
		t.Errorf("merged label lost its kind: %+v", eps[3].Number)
	}
	if len(eps[3].Servers) != 2 || eps[3].Servers[0].Index != 0 || eps[3].Servers[1].Index != 4 {
		t.Errorf("merged episode servers = %+v", eps[3].Servers)
	}
}

func TestInsertSeasonsTreeReplacesServers(t *testing.T) {
	db := newTestDB(t)
	repo := NewShowRepo(zerolog.Nop(), db)
	ctx := context.Background()

	showID, err := repo.InsertShow(ctx, sampleShow("https://example.com/series/foo/"))
	if err != nil {
		t.Fatal(err)
	}

	first := []domain.Season{{Number: 1, Episodes: []domain.Episode{
		{Number: domain.Normal(1), Servers: []domain.Server{
			{Index: 0, EmbedURL: "https://embed.example/stale"},
			{Index: 1, EmbedURL: "https://embed.example/stale2"},
		}},
	}}}
	if err := repo.InsertSeasonsTree(ctx, showID, first); err != nil {
		t.Fatal(err)
	}

	second := []domain.Season{{Number: 1, Episodes: []domain.Episode{
		{Number: domain.Normal(1), Servers: []domain.Server{
			{Index: 2, EmbedURL: "https://embed.example/fresh"},
		}},
	}}}
	if err := repo.InsertSeasonsTree(ctx, showID, second); err != nil {
		t.Fatal(err)
	}

	shows, err := repo.Catalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	eps := shows[0].Seasons[0].Episodes
	if len(eps) != 1 {
		t.Fatalf("re-scrape duplicated episodes: %+v", eps)
	}
	if len(eps[0].Servers) != 1 || eps[0].Servers[0].EmbedURL != "https://embed.example/fresh" {
		t.Errorf("stale servers survived: %+v", eps[0].Servers)
	}
}

func TestInsertMovieServers(t *testing.T) {
	db := newTestDB(t)
	repo := NewShowRepo(zerolog.Nop(), db)
	ctx := context.Background()

	show := sampleShow("https://example.com/film-bar/")
	show.Kind = domain.KindMovie
	showID, err := repo.InsertShow(ctx, show)
	if err != nil {
		t.Fatal(err)
	}

	servers := []domain.Server{{Index: 2, EmbedURL: "https://embed.example/m"}}
	if err := repo.InsertMovieServers(ctx, showID, servers); err != nil {
		t.Fatalf("InsertMovieServers() error = %v", err)
	}

	shows, err := repo.Catalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(shows[0].Seasons) != 1 || len(shows[0].Seasons[0].Episodes) != 1 {
		t.Fatalf("movie tree shape wrong: %+v", shows[0].Seasons)
	}
	got := shows[0].Seasons[0].Episodes[0]
	if got.Number.Label() != "1" {
		t.Errorf("movie episode label = %q, want 1", got.Number.Label())
	}
	if len(got.Servers) != 1 || got.Servers[0].EmbedURL != "https://embed.example/m" {
		t.Errorf("movie servers = %+v", got.Servers)
	}
}

func TestProgressLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepo(zerolog.Nop(), db)
	ctx := context.Background()

	urls := []string{
		"https://example.com/series/a/",
		"https://example.com/series/b/",
		"https://example.com/series/c/",
	}
	if err := repo.SeedProgress(ctx, urls); err != nil {
		t.Fatalf("SeedProgress() error = %v", err)
	}
	// Seeding again is a no-op.
	if err := repo.SeedProgress(ctx, urls); err != nil {
		t.Fatalf("second SeedProgress() error = %v", err)
	}

	counts, err := repo.StatusCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[domain.StatusPending] != 3 {
		t.Errorf("pending = %d, want 3", counts[domain.StatusPending])
	}

	showID := int64(7)
	if err := repo.Mark(ctx, urls[0], domain.StatusCompleted, &showID, ""); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	if err := repo.Mark(ctx, urls[1], domain.StatusFailed, nil, "no servers found"); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}

	pending, err := repo.GetPending(ctx, urls)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	// Failed URLs stay in the pending set so a re-run retries them.
	want := []string{urls[1], urls[2]}
	if len(pending) != len(want) {
		t.Fatalf("pending = %v, want %v", pending, want)
	}
	for i := range want {
		if pending[i] != want[i] {
			t.Errorf("pending[%d] = %q, want %q", i, pending[i], want[i])
		}
	}

	failed, err := repo.FailedURLs(ctx)
	if err != nil {
		t.Fatalf("FailedURLs() error = %v", err)
	}
	if len(failed) != 1 || failed[0].URL != urls[1] || failed[0].Error != "no servers found" {
		t.Errorf("failed = %+v", failed)
	}

	// A retry that succeeds flips the record over.
	if err := repo.Mark(ctx, urls[1], domain.StatusCompleted, &showID, ""); err != nil {
		t.Fatal(err)
	}
	failed, err = repo.FailedURLs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 0 {
		t.Errorf("failed after retry = %+v", failed)
	}
}

func TestMarkUnknownURLInserts(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepo(zerolog.Nop(), db)
	ctx := context.Background()

	if err := repo.Mark(ctx, "https://example.com/series/x/", domain.StatusCompleted, nil, ""); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	pending, err := repo.GetPending(ctx, []string{"https://example.com/series/x/"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("completed URL still pending: %v", pending)
	}
}
