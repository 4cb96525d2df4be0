package asset

import "fmt"

// CollectionType is the single shared collection holding all asset nodes.
const CollectionType = "asset"

// Asset is a media asset descriptor (immutable value object).
// Identity is the asset id; assets are deduplicated globally by id,
// never by the field that referenced them.
type Asset struct {
	id        string
	url       string
	mediaType string
	metadata  map[string]any
}

// New validates and creates an Asset.
func New(id, url, mediaType string, metadata map[string]any) (Asset, error) {
	if id == "" {
		return Asset{}, fmt.Errorf("asset id is required")
	}
	if url == "" {
		return Asset{}, fmt.Errorf("asset %s: url is required", id)
	}
	return Asset{
		id:        id,
		url:       url,
		mediaType: mediaType,
		metadata:  cloneMap(metadata),
	}, nil
}

// Reconstruct creates an Asset without validation (storage hydration).
func Reconstruct(id, url, mediaType string, metadata map[string]any) Asset {
	return Asset{id: id, url: url, mediaType: mediaType, metadata: metadata}
}

// ID returns the asset identifier.
func (a Asset) ID() string { return a.id }

// URL returns the asset base URL.
func (a Asset) URL() string { return a.url }

// MediaType returns the asset media type (e.g. image/png).
func (a Asset) MediaType() string { return a.mediaType }

// Metadata returns the arbitrary asset metadata.
func (a Asset) Metadata() map[string]any { return a.metadata }

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
