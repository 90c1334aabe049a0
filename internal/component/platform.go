package component

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

// ToCodeFunc generates the setup code for one validated entry.
type ToCodeFunc func(p *codegen.Program, rec schema.Record) error

// Generation priorities. Higher runs first, so referenced hardware exists
// before the devices that use it.
const (
	PriorityHardware = 100
	PrioritySensor   = 50
	PriorityDevice   = 0
)

// Platform describes one configurable component.
//
// Domain-level components (remote_transmitter) leave Name empty and are
// configured directly under their domain. Platforms (climate/mbishi) are
// selected with the entry's "platform" key.
type Platform struct {
	Domain   string
	Name     string
	Schema   *schema.Schema
	ToCode   ToCodeFunc
	AutoLoad []string
	Priority int
}

// Key returns "domain" or "domain.name".
func (p Platform) Key() string {
	if p.Name == "" {
		return p.Domain
	}
	return p.Domain + "." + p.Name
}

// Catalog is the fixed set of platforms available to a build.
// It is read-only after NewCatalog returns.
type Catalog struct {
	byKey    map[string]Platform
	domains  map[string]struct{}
	platform map[string]struct{}
}

// NewCatalog builds a catalogue from platforms.
//
// A key may be registered once, and every AutoLoad name must be a
// domain-level component in the catalogue.
func NewCatalog(platforms ...Platform) (*Catalog, error) {
	c := &Catalog{
		byKey:    make(map[string]Platform, len(platforms)),
		domains:  make(map[string]struct{}),
		platform: make(map[string]struct{}),
	}
	for _, p := range platforms {
		if p.Domain == "" {
			return nil, fmt.Errorf("%w: platform %q has no domain", ErrInvalidDocument, p.Name)
		}
		if _, exists := c.byKey[p.Key()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlatform, p.Key())
		}
		if p.Schema == nil {
			p.Schema = schema.New()
		}
		c.byKey[p.Key()] = p
		if p.Name == "" {
			c.domains[p.Domain] = struct{}{}
		} else {
			c.platform[p.Domain] = struct{}{}
		}
	}
	for _, p := range c.byKey {
		for _, dep := range p.AutoLoad {
			if _, ok := c.byKey[dep]; !ok {
				return nil, fmt.Errorf("%w: %s auto-loads %s", ErrMissingDependency, p.Key(), dep)
			}
		}
	}
	return c, nil
}

// Lookup returns the platform for domain and name. An empty name looks up a
// domain-level component.
func (c *Catalog) Lookup(domain, name string) (Platform, bool) {
	key := domain
	if name != "" {
		key = domain + "." + name
	}
	p, ok := c.byKey[key]
	return p, ok
}

// IsPlatformDomain reports whether domain is configured through platforms.
func (c *Catalog) IsPlatformDomain(domain string) bool {
	_, ok := c.platform[domain]
	return ok
}

// Keys returns every registered key, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// platformNames lists the platforms registered under domain.
func (c *Catalog) platformNames(domain string) []string {
	var names []string
	for _, p := range c.byKey {
		if p.Domain == domain && p.Name != "" {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}
