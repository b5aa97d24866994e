package viewer_test

import (
	"strings"
	"testing"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/viewer"
)

const token = "JTdCJTIyaWQlMjIlM0E1JTdE"

func TestDefaultViewerLinks(t *testing.T) {
	viewers := viewer.FromConfig(config.Default().Viewers)
	links, err := viewer.Links(viewers, token)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	want := []viewer.Link{
		{Name: "theseus", Label: "Theseus", URL: "https://theseusviewer.org/?iiif-content=" + token},
		{Name: "clover", Label: "Clover", URL: "https://samvera-labs.github.io/clover-iiif/?iiif-content=" + token},
	}
	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d", len(links), len(want))
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("link %d = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestLinkKeepsExistingQuery(t *testing.T) {
	v := viewer.New("mirador", "", "https://example.org/view?theme=dark&iiif-content=old", "")
	link, err := v.Link(token)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !strings.Contains(link, "theme=dark") {
		t.Fatalf("existing parameter dropped: %s", link)
	}
	if strings.Contains(link, "old") || !strings.Contains(link, "iiif-content="+token) {
		t.Fatalf("token parameter not replaced: %s", link)
	}
}

func TestNewDefaultsLabelAndParam(t *testing.T) {
	v := viewer.New("universal-viewer", "", "https://uv.example/", " ")
	if v.Label != "Universal Viewer" {
		t.Fatalf("label = %q", v.Label)
	}
	if v.Param != viewer.DefaultParam {
		t.Fatalf("param = %q", v.Param)
	}
}

func TestLinkErrors(t *testing.T) {
	if _, err := viewer.New("rel", "", "/relative", "").Link(token); err == nil {
		t.Fatal("expected error for relative base url")
	}
	if _, err := viewer.New("ok", "", "https://example.org/", "").Link(""); err == nil {
		t.Fatal("expected error for empty token")
	}
	viewers := []viewer.Viewer{viewer.New("bad", "", "://nope", "")}
	if _, err := viewer.Links(viewers, token); err == nil {
		t.Fatal("expected Links to surface the failure")
	}
}

func TestFind(t *testing.T) {
	viewers := viewer.FromConfig(config.Default().Viewers)
	v, ok := viewer.Find(viewers, "CLOVER")
	if !ok || v.Name != "clover" {
		t.Fatalf("Find = %+v, %v", v, ok)
	}
	if _, ok := viewer.Find(viewers, "mirador"); ok {
		t.Fatal("unexpected viewer found")
	}
}
