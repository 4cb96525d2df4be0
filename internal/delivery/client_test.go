package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		Endpoint:  srv.URL,
		ProjectID: "proj",
		APIKey:    "secret",
		Timeout:   5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("write response: %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{ProjectID: "p"}, nil); err == nil ||
		!strings.Contains(err.Error(), "endpoint is required") {
		t.Errorf("missing endpoint: got %v", err)
	}
	if _, err := New(Config{Endpoint: "https://api.example.com"}, nil); err == nil ||
		!strings.Contains(err.Error(), "project id is required") {
		t.Errorf("missing project id: got %v", err)
	}
}

func TestTypes(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proj/types" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		writeJSON(t, w, `{"types":[
			{"system":{"codename":"article","name":"Article"}},
			{"system":{"codename":"author","name":"Author"}}
		]}`)
	}))

	types, err := c.Types(context.Background())
	if err != nil {
		t.Fatalf("Types: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("got %d types, want 2", len(types))
	}
	if types[0].Codename() != "article" || types[0].Name() != "Article" {
		t.Errorf("types[0] = %s/%s", types[0].Codename(), types[0].Name())
	}
}

func TestTypes_InvalidCodename(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"types":[{"system":{"codename":"Bad Name","name":"x"}}]}`)
	}))
	if _, err := c.Types(context.Background()); err == nil ||
		!strings.Contains(err.Error(), "decode content type") {
		t.Errorf("got %v, want decode error", err)
	}
}

func TestTypes_NonOKStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	_, err := c.Types(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unexpected status 403") {
		t.Errorf("got %v, want status error", err)
	}
}

func TestTaxonomies(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proj/taxonomies" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, `{"taxonomies":[{
			"system":{"codename":"personas","name":"Personas"},
			"terms":[
				{"id":"t1","name":"Developer","slug":"developer","terms":[
					{"id":"t2","name":"Backend","slug":"backend","terms":[]}
				]},
				{"id":"t3","name":"Manager","slug":"manager","terms":[]}
			]
		}]}`)
	}))

	groups, err := c.Taxonomies(context.Background())
	if err != nil {
		t.Fatalf("Taxonomies: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Codename() != "personas" {
		t.Errorf("codename = %s", g.Codename())
	}
	terms := g.Terms()
	if len(terms) != 2 {
		t.Fatalf("got %d root terms, want 2", len(terms))
	}
	children := terms[0].Children()
	if len(children) != 1 || children[0].Slug() != "backend" {
		t.Errorf("nested term not decoded: %+v", children)
	}
}

func itemsFixture() string {
	return `{
		"items":[{
			"system":{"id":"i1","type":"article","codename":"hello"},
			"elements":{
				"title":{"type":"text","name":"Title","value":"Hello"},
				"slug":{"type":"url_slug","name":"Slug","value":"hello"},
				"body":{"type":"rich_text","name":"Body","value":"<p>hi</p><script>alert(1)</script>"},
				"author":{"type":"modular_content","name":"Author","value":["jane"]},
				"teaser":{"type":"modular_content","name":"Teaser","value":["comp_1"]},
				"related":{"type":"modular_content","name":"Related","value":["missing_cn"]},
				"personas":{"type":"taxonomy","name":"Personas","taxonomy_group":"personas","value":[{"name":"Developer"}]},
				"hero":{"type":"asset","name":"Hero","assets":[{"id":"a1","url":"https://cdn.example.com/a1.png","type":"image/png","name":"a1.png","size":1024}]}
			}
		}],
		"modular_content":{
			"jane":{
				"system":{"id":"au1","type":"author","codename":"jane"},
				"elements":{"name":{"type":"text","name":"Name","value":"Jane"}}
			},
			"comp_1":{
				"system":{"id":"","type":"teaser_block","codename":""},
				"elements":{"text":{"type":"text","name":"Text","value":"teaser"}}
			}
		},
		"pagination":{"continuation_token":""}
	}`
}

func elementByName(t *testing.T, e Entry, name string) Element {
	t.Helper()
	for _, el := range e.Elements {
		if el.Name == name {
			return el
		}
	}
	t.Fatalf("entry %s has no element %q", e.ID, name)
	return Element{}
}

func TestItems(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proj/items" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("system.type") != "article" {
			t.Errorf("system.type = %q", q.Get("system.type"))
		}
		if q.Get("depth") != "3" {
			t.Errorf("depth = %q", q.Get("depth"))
		}
		writeJSON(t, w, itemsFixture())
	}))

	result, err := c.Items(context.Background(), "article")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(result.Items))
	}
	item := result.Items[0]
	if item.ID != "i1" || item.Type != "article" || item.Component {
		t.Errorf("item = %+v", item)
	}

	body := elementByName(t, item, "body")
	s, _ := body.Value.(string)
	if strings.Contains(s, "<script") {
		t.Errorf("rich text not sanitized: %q", s)
	}
	if !strings.Contains(s, "<p>hi</p>") {
		t.Errorf("rich text content lost: %q", s)
	}

	author := elementByName(t, item, "author")
	if len(author.LinkedItems) != 1 {
		t.Fatalf("author refs = %+v", author.LinkedItems)
	}
	if got := author.LinkedItems[0]; got.ID != "au1" || got.Type != "author" {
		t.Errorf("author ref = %+v", got)
	}

	// Component side-table entries resolve through their side-table codename.
	teaser := elementByName(t, item, "teaser")
	if len(teaser.LinkedItems) != 1 {
		t.Fatalf("teaser refs = %+v", teaser.LinkedItems)
	}
	if got := teaser.LinkedItems[0]; got.ID != "comp_1" || got.Type != "teaser_block" {
		t.Errorf("teaser ref = %+v", got)
	}

	// Codenames missing from the response are dropped, not errored.
	related := elementByName(t, item, "related")
	if len(related.LinkedItems) != 0 {
		t.Errorf("missing codename kept: %+v", related.LinkedItems)
	}

	personas := elementByName(t, item, "personas")
	if personas.TaxonomyGroup != "personas" {
		t.Errorf("taxonomy group = %q", personas.TaxonomyGroup)
	}

	hero := elementByName(t, item, "hero")
	if len(hero.Assets) != 1 {
		t.Fatalf("hero assets = %+v", hero.Assets)
	}
	if a := hero.Assets[0]; a.ID != "a1" || a.URL != "https://cdn.example.com/a1.png" || a.MediaType != "image/png" {
		t.Errorf("asset = %+v", a)
	}

	linked, ok := result.LinkedItems["au1"]
	if !ok {
		t.Fatal("side table missing au1")
	}
	if linked.Component || linked.Codename != "jane" {
		t.Errorf("linked entry = %+v", linked)
	}

	comp, ok := result.LinkedItems["comp_1"]
	if !ok {
		t.Fatal("side table missing component comp_1")
	}
	if !comp.Component || comp.ID != "comp_1" || comp.Type != "teaser_block" {
		t.Errorf("component entry = %+v", comp)
	}
}

func TestItems_Pagination(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		token := r.URL.Query().Get("continuation")
		switch calls {
		case 1:
			if token != "" {
				t.Errorf("first page has continuation %q", token)
			}
			writeJSON(t, w, `{
				"items":[{"system":{"id":"i1","type":"article","codename":"one"},"elements":{}}],
				"modular_content":{},
				"pagination":{"continuation_token":"next-1"}
			}`)
		case 2:
			if token != "next-1" {
				t.Errorf("second page continuation = %q", token)
			}
			writeJSON(t, w, `{
				"items":[{"system":{"id":"i2","type":"article","codename":"two"},"elements":{}}],
				"modular_content":{},
				"pagination":{"continuation_token":""}
			}`)
		default:
			t.Errorf("unexpected extra call %d", calls)
		}
	}))

	result, err := c.Items(context.Background(), "article")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if calls != 2 {
		t.Errorf("made %d calls, want 2", calls)
	}
	if len(result.Items) != 2 || result.Items[0].ID != "i1" || result.Items[1].ID != "i2" {
		t.Errorf("items = %+v", result.Items)
	}
}

func TestItems_FetchError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := c.Items(context.Background(), "article")
	if err == nil || !strings.Contains(err.Error(), "fetch items of type article") {
		t.Errorf("got %v, want wrapped fetch error", err)
	}
}

func TestItems_InvalidJSON(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	_, err := c.Items(context.Background(), "article")
	if err == nil || !strings.Contains(err.Error(), "decode /items response") {
		t.Errorf("got %v, want decode error", err)
	}
}

func TestSanitizeRichText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep []string
		drop []string
	}{
		{
			name: "strips script",
			in:   `<p>ok</p><script>alert(1)</script>`,
			keep: []string{"<p>ok</p>"},
			drop: []string{"<script"},
		},
		{
			name: "strips event handlers",
			in:   `<a href="https://x" onclick="evil()">link</a>`,
			keep: []string{"link"},
			drop: []string{"onclick"},
		},
		{
			name: "keeps object embeds with data attributes",
			in:   `<object type="application/kenticocloud" data-type="item" data-codename="cta"></object>`,
			keep: []string{"data-codename=\"cta\""},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeRichText(tc.in)
			for _, s := range tc.keep {
				if !strings.Contains(got, s) {
					t.Errorf("sanitized %q lost %q: %q", tc.in, s, got)
				}
			}
			for _, s := range tc.drop {
				if strings.Contains(got, s) {
					t.Errorf("sanitized %q kept %q: %q", tc.in, s, got)
				}
			}
		})
	}
}

func TestEntryWireRoundTrip(t *testing.T) {
	raw := `{"system":{"id":"i1","type":"article","codename":"hello"},"elements":{"title":{"type":"text","name":"Title","value":"Hello"}}}`
	var e entryWire
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.System.ID != "i1" || e.Elements["title"].Value != "Hello" {
		t.Errorf("decoded = %+v", e)
	}
}
