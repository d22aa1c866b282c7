package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	GlifCalibnet = "https://api.calibration.node.glif.io"
	GlifMainnet  = "https://api.node.glif.io/"
)

// Provider is one selectable RPC endpoint.
type Provider struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

func DefaultProviders() []Provider {
	return []Provider{
		{Name: "calibnet", Label: "Glif.io Calibnet", URL: GlifCalibnet},
		{Name: "mainnet", Label: "Glif.io Mainnet", URL: GlifMainnet},
	}
}

// Catalog is the fixed set of providers offered to the user, in display order.
type Catalog struct {
	providers []Provider
}

func NewCatalog(providers []Provider) (*Catalog, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("endpoint: no providers configured")
	}
	seen := make(map[string]struct{}, len(providers))
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.Name == "" {
			return nil, fmt.Errorf("endpoint: provider with url %q has no name", p.URL)
		}
		if p.URL == "" {
			return nil, fmt.Errorf("endpoint: provider %q has no url", p.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("endpoint: duplicate provider %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Label == "" {
			p.Label = p.Name
		}
		out = append(out, p)
	}
	return &Catalog{providers: out}, nil
}

func (c *Catalog) Providers() []Provider {
	out := make([]Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

func (c *Catalog) Lookup(name string) (Provider, bool) {
	for _, p := range c.providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// Resolve maps a provider name, or an absolute http(s) URL, to an endpoint.
func (c *Catalog) Resolve(nameOrURL string) (string, error) {
	s := strings.TrimSpace(nameOrURL)
	if p, ok := c.Lookup(s); ok {
		return p.URL, nil
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return s, nil
	}
	return "", fmt.Errorf("endpoint: unknown provider %q", nameOrURL)
}

// Select resolves nameOrURL and sets it on store.
func (c *Catalog) Select(store *Store, nameOrURL string) error {
	u, err := c.Resolve(nameOrURL)
	if err != nil {
		return err
	}
	store.Set(u)
	return nil
}
