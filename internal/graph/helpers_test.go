package graph

import (
	"context"
	"testing"

	"github.com/sitegraph-io/sitegraph/internal/delivery"
	"github.com/sitegraph-io/sitegraph/internal/domain/content"
	"github.com/sitegraph-io/sitegraph/internal/domain/taxonomy"
	"github.com/sitegraph-io/sitegraph/internal/store"
	"github.com/sitegraph-io/sitegraph/internal/store/memory"
)

// fakeFetcher is an in-memory Fetcher double.
type fakeFetcher struct {
	types      []content.Type
	taxonomies []taxonomy.Group
	items      map[string]delivery.ItemsResult

	typesErr error
	taxErr   error
	itemsErr error
}

func (f *fakeFetcher) Types(context.Context) ([]content.Type, error) {
	return f.types, f.typesErr
}

func (f *fakeFetcher) Taxonomies(context.Context) ([]taxonomy.Group, error) {
	return f.taxonomies, f.taxErr
}

func (f *fakeFetcher) Items(_ context.Context, typeCodename string) (delivery.ItemsResult, error) {
	if f.itemsErr != nil {
		return delivery.ItemsResult{}, f.itemsErr
	}
	res, ok := f.items[typeCodename]
	if !ok {
		return delivery.ItemsResult{LinkedItems: map[string]delivery.Entry{}}, nil
	}
	return res, nil
}

func makeType(t *testing.T, codename string) content.Type {
	t.Helper()
	ct, err := content.NewType(codename, codename)
	if err != nil {
		t.Fatalf("content.NewType(%q): %v", codename, err)
	}
	return ct
}

func makeTerm(t *testing.T, id string, children ...taxonomy.Term) taxonomy.Term {
	t.Helper()
	term, err := taxonomy.NewTerm(id, "name-"+id, "slug-"+id, children)
	if err != nil {
		t.Fatalf("taxonomy.NewTerm(%q): %v", id, err)
	}
	return term
}

func makeGroup(t *testing.T, codename string, terms ...taxonomy.Term) taxonomy.Group {
	t.Helper()
	g, err := taxonomy.NewGroup(codename, codename, terms)
	if err != nil {
		t.Fatalf("taxonomy.NewGroup(%q): %v", codename, err)
	}
	return g
}

func textElement(name, value string) delivery.Element {
	return delivery.Element{Name: name, Kind: delivery.ElementText, Value: value}
}

func slugElement(value string) delivery.Element {
	return delivery.Element{Name: "url", Kind: delivery.ElementURLSlug, Value: value}
}

func linkedElement(name string, refs ...delivery.LinkedRef) delivery.Element {
	return delivery.Element{Name: name, Kind: delivery.ElementModularContent, LinkedItems: refs}
}

func taxonomyElement(name, group string, value any) delivery.Element {
	return delivery.Element{Name: name, Kind: delivery.ElementTaxonomy, TaxonomyGroup: group, Value: value}
}

func assetElement(name string, assets ...delivery.AssetValue) delivery.Element {
	return delivery.Element{Name: name, Kind: delivery.ElementAsset, Assets: assets}
}

func pngAsset(id string) delivery.AssetValue {
	return delivery.AssetValue{
		ID:        id,
		URL:       "https://cdn.example.com/" + id + ".png",
		MediaType: "image/png",
		Name:      id + ".png",
	}
}

func entry(id, typeName, codename string, elements ...delivery.Element) delivery.Entry {
	return delivery.Entry{ID: id, Type: typeName, Codename: codename, Elements: elements}
}

func componentEntry(id, typeName string, elements ...delivery.Element) delivery.Entry {
	return delivery.Entry{ID: id, Type: typeName, Component: true, Elements: elements}
}

func mustCollection(t *testing.T, st store.Store, typeName string) store.Collection {
	t.Helper()
	col, ok := st.Collection(typeName)
	if !ok {
		t.Fatalf("collection %q not found", typeName)
	}
	return col
}

func nodeIDs(t *testing.T, col store.Collection) []string {
	t.Helper()
	nodes, err := col.Nodes(context.Background())
	if err != nil {
		t.Fatalf("Nodes(): %v", err)
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func newMemoryStore() *memory.Store { return memory.New() }
