package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/topcine/topcinedb/internal/database"
	"github.com/topcine/topcinedb/internal/domain"
)

func TestCatalogExport(t *testing.T) {
	log := zerolog.Nop()
	db, err := database.NewDB(t.TempDir(), log)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	defer db.Close()

	repo := database.NewShowRepo(log, db)
	ctx := context.Background()

	rating := 8.6
	showID, err := repo.InsertShow(ctx, &domain.Show{
		Title:     "Foo",
		Kind:      domain.KindSeries,
		Rating:    &rating,
		SourceURL: "https://example.com/series/foo/",
	})
	if err != nil {
		t.Fatal(err)
	}
	seasons := []domain.Season{{Number: 1, Episodes: []domain.Episode{
		{Number: domain.Normal(1), Servers: []domain.Server{{Index: 3, EmbedURL: "https://embed.example/a"}}},
		{Number: domain.Fractional(1.5)},
	}}}
	if err := repo.InsertSeasonsTree(ctx, showID, seasons); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	svc := NewService(log, repo)
	if err := svc.Catalog(ctx, path); err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out catalogFile
	if err := yaml.Unmarshal(body, &out); err != nil {
		t.Fatalf("bad YAML: %v", err)
	}

	if len(out.Shows) != 1 {
		t.Fatalf("got %d shows, want 1", len(out.Shows))
	}
	show := out.Shows[0]
	if show.Title != "Foo" || show.Kind != "series" {
		t.Errorf("show = %+v", show)
	}
	if show.Rating == nil || *show.Rating != 8.6 {
		t.Errorf("rating = %v", show.Rating)
	}
	if len(show.Seasons) != 1 || len(show.Seasons[0].Episodes) != 2 {
		t.Fatalf("tree shape = %+v", show.Seasons)
	}
	eps := show.Seasons[0].Episodes
	if eps[0].Number != "1" || eps[1].Number != "1.5" {
		t.Errorf("episode labels = %q, %q", eps[0].Number, eps[1].Number)
	}
	if len(eps[0].Servers) != 1 || eps[0].Servers[0] != "https://embed.example/a" {
		t.Errorf("servers = %v", eps[0].Servers)
	}
}
