package delivery

// Wire shapes of the delivery API, plus the normalized forms handed to the
// graph layer. Normalization happens at decode time: linked-item codenames
// are resolved to (id, type) pairs against the response side table, and
// rich-text values are sanitized.

// Entry is one normalized content entry.
type Entry struct {
	ID       string
	Type     string
	Codename string
	// Component marks rich-text embedded entries: they arrive only in the
	// linked-items side table and carry no addressable codename.
	Component bool
	Elements  []Element
}

// Element kinds as reported by the delivery API.
const (
	ElementText           = "text"
	ElementNumber         = "number"
	ElementDateTime       = "date_time"
	ElementURLSlug        = "url_slug"
	ElementRichText       = "rich_text"
	ElementModularContent = "modular_content"
	ElementTaxonomy       = "taxonomy"
	ElementAsset          = "asset"
)

// Element is one normalized entry element.
type Element struct {
	Name  string
	Kind  string
	Value any

	// LinkedItems is set for modular_content elements: the referenced
	// entries resolved to id and type.
	LinkedItems []LinkedRef
	// TaxonomyGroup is set for taxonomy elements.
	TaxonomyGroup string
	// Assets is set for asset elements.
	Assets []AssetValue
}

// LinkedRef is one resolved linked-item reference.
type LinkedRef struct {
	ID   string
	Type string
}

// AssetValue is one asset descriptor as delivered.
type AssetValue struct {
	ID        string         `json:"id"`
	URL       string         `json:"url"`
	MediaType string         `json:"type"`
	Name      string         `json:"name"`
	Size      int64          `json:"size"`
	Extra     map[string]any `json:"-"`
}

// ItemsResult is the normalized items response for one content type:
// primary entries plus the side table of everything they transitively
// reference, including rich-text component entries.
type ItemsResult struct {
	Items       []Entry
	LinkedItems map[string]Entry // keyed by entry id
}

// TaxonomyTermWire is one term in the taxonomies response.
type TaxonomyTermWire struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Slug  string             `json:"slug"`
	Terms []TaxonomyTermWire `json:"terms"`
}

type systemWire struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Codename string `json:"codename"`
	Name     string `json:"name"`
}

type elementWire struct {
	Type          string       `json:"type"`
	Name          string       `json:"name"`
	Value         any          `json:"value"`
	TaxonomyGroup string       `json:"taxonomy_group"`
	Assets        []AssetValue `json:"assets"`
}

type entryWire struct {
	System   systemWire             `json:"system"`
	Elements map[string]elementWire `json:"elements"`
}

type typesResponse struct {
	Types []struct {
		System systemWire `json:"system"`
	} `json:"types"`
}

type taxonomiesResponse struct {
	Taxonomies []struct {
		System systemWire         `json:"system"`
		Terms  []TaxonomyTermWire `json:"terms"`
	} `json:"taxonomies"`
}

type itemsResponse struct {
	Items       []entryWire          `json:"items"`
	LinkedItems map[string]entryWire `json:"modular_content"`
	Pagination  paginationWire       `json:"pagination"`
}

type paginationWire struct {
	ContinuationToken string `json:"continuation_token"`
}
