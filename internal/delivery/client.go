// Package delivery is the HTTP client for the remote headless content API.
// It fetches content types, taxonomy groups and content entries (with their
// transitively linked side table) and normalizes the wire shapes for the
// graph layer. No retries: any failure propagates and aborts the load.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitegraph-io/sitegraph/internal/domain/content"
	"github.com/sitegraph-io/sitegraph/internal/domain/taxonomy"
)

// Config holds delivery API connection settings.
type Config struct {
	Endpoint  string
	ProjectID string
	APIKey    string
	Timeout   time.Duration
	// Depth is how many levels of linked items the API resolves into the
	// response side table.
	Depth int
}

// Client talks to the delivery API.
type Client struct {
	http    *http.Client
	cfg     Config
	baseURL string
	logger  *zap.Logger
}

// New validates the config and creates a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("delivery endpoint is required")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("delivery project id is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.JoinPath(cfg.Endpoint, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("build base url: %w", err)
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		baseURL: base,
		logger:  logger,
	}, nil
}

// Types fetches all content types.
func (c *Client) Types(ctx context.Context) ([]content.Type, error) {
	var resp typesResponse
	if err := c.get(ctx, "/types", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch content types: %w", err)
	}

	types := make([]content.Type, 0, len(resp.Types))
	for _, t := range resp.Types {
		ct, err := content.NewType(t.System.Codename, t.System.Name)
		if err != nil {
			return nil, fmt.Errorf("decode content type: %w", err)
		}
		types = append(types, ct)
	}
	return types, nil
}

// Taxonomies fetches all taxonomy groups with their term forests.
func (c *Client) Taxonomies(ctx context.Context) ([]taxonomy.Group, error) {
	var resp taxonomiesResponse
	if err := c.get(ctx, "/taxonomies", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch taxonomies: %w", err)
	}

	groups := make([]taxonomy.Group, 0, len(resp.Taxonomies))
	for _, g := range resp.Taxonomies {
		terms, err := decodeTerms(g.Terms)
		if err != nil {
			return nil, fmt.Errorf("decode taxonomy %s: %w", g.System.Codename, err)
		}
		group, err := taxonomy.NewGroup(g.System.Codename, g.System.Name, terms)
		if err != nil {
			return nil, fmt.Errorf("decode taxonomy: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Items fetches all entries of one content type, following continuation
// tokens, and returns them with the merged linked-items side table.
func (c *Client) Items(ctx context.Context, typeCodename string) (ItemsResult, error) {
	result := ItemsResult{LinkedItems: make(map[string]Entry)}
	var rawItems []entryWire
	rawLinked := make(map[string]entryWire)

	token := ""
	for {
		query := url.Values{}
		query.Set("system.type", typeCodename)
		query.Set("depth", strconv.Itoa(c.cfg.Depth))
		if token != "" {
			query.Set("continuation", token)
		}

		var resp itemsResponse
		if err := c.get(ctx, "/items", query, &resp); err != nil {
			return ItemsResult{}, fmt.Errorf("fetch items of type %s: %w", typeCodename, err)
		}

		rawItems = append(rawItems, resp.Items...)
		for codename, e := range resp.LinkedItems {
			rawLinked[codename] = e
		}

		token = resp.Pagination.ContinuationToken
		if token == "" {
			break
		}
	}

	// Resolve linked-item codenames to (id, type) against everything the
	// response carries: primary entries and the side table.
	index := make(map[string]LinkedRef, len(rawItems)+len(rawLinked))
	for _, e := range rawItems {
		index[e.System.Codename] = LinkedRef{ID: e.System.ID, Type: e.System.Type}
	}
	for codename, e := range rawLinked {
		id := e.System.ID
		if id == "" {
			// Component entries have no system id of their own; key them
			// by the side-table codename so references still resolve.
			id = codename
		}
		index[codename] = LinkedRef{ID: id, Type: e.System.Type}
	}

	for _, e := range rawItems {
		result.Items = append(result.Items, c.normalizeEntry(e, "", index, false))
	}
	for codename, e := range rawLinked {
		component := e.System.Codename == ""
		entry := c.normalizeEntry(e, codename, index, component)
		result.LinkedItems[entry.ID] = entry
	}
	return result, nil
}

func (c *Client) normalizeEntry(e entryWire, sideCodename string, index map[string]LinkedRef, component bool) Entry {
	id := e.System.ID
	if id == "" {
		id = sideCodename
	}
	entry := Entry{
		ID:        id,
		Type:      e.System.Type,
		Codename:  e.System.Codename,
		Component: component,
	}
	for name, el := range e.Elements {
		entry.Elements = append(entry.Elements, c.normalizeElement(name, el, index))
	}
	return entry
}

func (c *Client) normalizeElement(name string, el elementWire, index map[string]LinkedRef) Element {
	out := Element{Name: name, Kind: el.Type, Value: el.Value}
	switch el.Type {
	case ElementRichText:
		if s, ok := el.Value.(string); ok {
			out.Value = SanitizeRichText(s)
		}
	case ElementModularContent:
		out.LinkedItems = c.resolveLinked(name, el.Value, index)
	case ElementTaxonomy:
		out.TaxonomyGroup = el.TaxonomyGroup
	case ElementAsset:
		out.Assets = el.Assets
	}
	return out
}

// resolveLinked maps a modular_content value (a list of entry codenames) to
// resolved references. Codenames absent from the response are dropped with
// a warning; the API omits unpublished targets.
func (c *Client) resolveLinked(field string, value any, index map[string]LinkedRef) []LinkedRef {
	codenames, ok := value.([]any)
	if !ok {
		return nil
	}
	var refs []LinkedRef
	for _, v := range codenames {
		codename, ok := v.(string)
		if !ok {
			continue
		}
		ref, ok := index[codename]
		if !ok {
			c.logger.Warn("linked item not present in response, dropping reference",
				zap.String("field", field),
				zap.String("codename", codename),
			)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request %s: unexpected status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeTerms(wire []TaxonomyTermWire) ([]taxonomy.Term, error) {
	if len(wire) == 0 {
		return nil, nil
	}
	terms := make([]taxonomy.Term, 0, len(wire))
	for _, w := range wire {
		children, err := decodeTerms(w.Terms)
		if err != nil {
			return nil, err
		}
		t, err := taxonomy.NewTerm(w.ID, w.Name, w.Slug, children)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}
