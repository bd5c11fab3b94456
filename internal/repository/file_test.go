package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadURLs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"flat array", `["https://a/", "https://b/"]`, []string{"https://a/", "https://b/"}},
		{"wrapped urls", `{"urls": ["https://a/"]}`, []string{"https://a/"}},
		{"wrapped series_animes", `{"series_animes": ["https://a/", "https://b/"]}`, []string{"https://a/", "https://b/"}},
		{"malformed", `{not json`, nil},
		{"empty object", `{}`, nil},
	}

	r := NewFileRepository(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.LoadURLs(writeFixture(t, tt.body))
			if len(got) != len(tt.want) {
				t.Fatalf("LoadURLs = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("LoadURLs[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadURLsMissingFile(t *testing.T) {
	r := NewFileRepository(zerolog.Nop())
	if got := r.LoadURLs(filepath.Join(t.TempDir(), "nope.json")); got != nil {
		t.Errorf("missing file should load empty, got %v", got)
	}
}

func TestStoreURLsRoundTrip(t *testing.T) {
	r := NewFileRepository(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "out.json")

	urls := []string{"https://a/", "https://b/"}
	if err := r.StoreURLs(path, urls); err != nil {
		t.Fatalf("StoreURLs() error = %v", err)
	}

	got := r.LoadURLs(path)
	if len(got) != 2 || got[0] != urls[0] || got[1] != urls[1] {
		t.Errorf("round trip = %v, want %v", got, urls)
	}
}
