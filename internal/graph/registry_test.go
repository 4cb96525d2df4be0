package graph

import (
	"reflect"
	"testing"

	"github.com/sitegraph-io/sitegraph/internal/delivery"
	"github.com/sitegraph-io/sitegraph/internal/domain/content"
)

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register("article", func(delivery.Entry) (content.Node, error) {
		t.Fatal("replaced builder invoked")
		return content.Node{}, nil
	})
	called := false
	r.Register("article", func(delivery.Entry) (content.Node, error) {
		called = true
		return content.Node{}, nil
	})

	b, ok := r.Builder("article")
	if !ok {
		t.Fatal("builder not found")
	}
	if _, err := b(delivery.Entry{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("last registered builder was not invoked")
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Builder("missing"); ok {
		t.Error("Builder(missing) unexpectedly found")
	}
}

func TestDefaultBuilder_ClassifiesElements(t *testing.T) {
	r := NewRegistry()
	r.RegisterTypes([]content.Type{makeType(t, "article")})
	b, ok := r.Builder("article")
	if !ok {
		t.Fatal("builder not registered")
	}

	e := entry("i1", "article", "post",
		textElement("title", "Hello"),
		slugElement("hello-world"),
		linkedElement("related", delivery.LinkedRef{ID: "i2", Type: "article"}),
		taxonomyElement("personas", "site_personas", []any{"developer"}),
		assetElement("hero", pngAsset("a1")),
	)

	node, err := b(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item := node.Item()
	if item.ID() != "i1" || item.TypeName() != "article" {
		t.Errorf("item identity = %q/%q", item.ID(), item.TypeName())
	}
	if item.Slug() != "hello-world" {
		t.Errorf("Slug() = %q, want hello-world", item.Slug())
	}
	if v, _ := item.Field("title"); v != "Hello" {
		t.Errorf("title = %v, want Hello", v)
	}

	// Relationship fields store plain id lists.
	if v, _ := item.Field("related"); !reflect.DeepEqual(v, []string{"i2"}) {
		t.Errorf("related field value = %v, want [i2]", v)
	}
	if v, _ := item.Field("hero"); !reflect.DeepEqual(v, []string{"a1"}) {
		t.Errorf("hero field value = %v, want [a1]", v)
	}

	if len(node.LinkedItemFields()) != 1 {
		t.Fatalf("LinkedItemFields() len = %d, want 1", len(node.LinkedItemFields()))
	}
	if node.LinkedItemFields()[0].Name() != "related" {
		t.Errorf("linked field name = %q", node.LinkedItemFields()[0].Name())
	}
	if len(node.TaxonomyFields()) != 1 || node.TaxonomyFields()[0].Group() != "site_personas" {
		t.Errorf("taxonomy fields = %+v", node.TaxonomyFields())
	}
	if len(node.AssetFields()) != 1 || len(node.AssetFields()[0].Assets()) != 1 {
		t.Errorf("asset fields = %+v", node.AssetFields())
	}
}

func TestDefaultBuilder_ComponentEntry(t *testing.T) {
	r := NewRegistry()
	r.RegisterTypes([]content.Type{makeType(t, "quote_block")})
	b, _ := r.Builder("quote_block")

	node, err := b(componentEntry("c1", "quote_block", textElement("quote", "...")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !node.Item().IsComponent() {
		t.Error("IsComponent() = false, want true")
	}
}
