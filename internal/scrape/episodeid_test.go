package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromString(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func TestExtractEpisodeID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"data-id attribute",
			`<ul class="watch--servers--list"><li class="server--item" data-id="12345">server 1</li></ul>`,
			"12345",
		},
		{
			"data-id preferred over script",
			`<ul class="watch--servers--list"><li class="server--item" data-id="111"></li></ul>
			 <script>var post = {"id": "999"};</script>`,
			"111",
		},
		{
			"script fallback",
			`<div>no server list</div><script>var post = {"id" : "67890", "type": "episode"};</script>`,
			"67890",
		},
		{
			"blank data-id falls through to script",
			`<ul class="watch--servers--list"><li class="server--item" data-id="  "></li></ul>
			 <script>{"id":"42"}</script>`,
			"42",
		},
		{
			"nothing present",
			`<div><p>removed</p></div>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEpisodeID(docFromString(t, tt.body))
			if got != tt.want {
				t.Errorf("ExtractEpisodeID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractEpisodeIDNilDoc(t *testing.T) {
	if got := ExtractEpisodeID(nil); got != "" {
		t.Errorf("ExtractEpisodeID(nil) = %q, want empty", got)
	}
}
