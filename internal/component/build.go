package component

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

// KeyPlatform selects the platform of an entry in a platform domain.
const KeyPlatform = "platform"

// Entry is one validated configuration entry bound to its platform.
type Entry struct {
	Platform Platform
	// Path locates the entry in the document (e.g. ["climate[0]"]).
	Path   []string
	Record schema.Record
}

// Validate checks every entry of doc against the catalogue.
//
// All problems are collected; on any failure the error is a schema.Errors
// list and no entries are returned.
func Validate(c *Catalog, doc *Document) ([]Entry, error) {
	var (
		entries []Entry
		errs    schema.Errors
	)

	for _, sec := range doc.Sections {
		// A domain with platforms is always configured through them, even
		// when it also has a domain-level component (climate).
		_, hasDomain := c.Lookup(sec.Domain, "")
		isDomain := hasDomain && !c.IsPlatformDomain(sec.Domain)
		if !isDomain && !c.IsPlatformDomain(sec.Domain) {
			errs = append(errs, &schema.ValidationError{
				Path:       []string{sec.Domain},
				Constraint: fmt.Sprintf("unknown component, available: %v", c.Keys()),
				Err:        ErrUnknownComponent,
			})
			continue
		}

		for i, raw := range sec.Entries {
			path := []string{sec.Domain}
			if sec.List {
				path = []string{fmt.Sprintf("%s[%d]", sec.Domain, i)}
			}

			p, body, verr := resolvePlatform(c, sec.Domain, isDomain, raw)
			if verr != nil {
				errs = append(errs, schema.Errors{verr}.WithPrefix(path...)...)
				continue
			}

			rec, err := p.Schema.Validate(body)
			if err != nil {
				if ves, ok := err.(schema.Errors); ok {
					errs = append(errs, ves.WithPrefix(path...)...)
				} else {
					errs = append(errs, &schema.ValidationError{Path: path, Constraint: err.Error(), Err: schema.ErrInvalidValue})
				}
				continue
			}
			entries = append(entries, Entry{Platform: p, Path: path, Record: rec})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return entries, nil
}

// resolvePlatform picks the platform for one raw entry and strips the
// platform selector from the body.
func resolvePlatform(c *Catalog, domain string, isDomain bool, raw map[string]any) (Platform, map[string]any, *schema.ValidationError) {
	if isDomain {
		p, _ := c.Lookup(domain, "")
		return p, raw, nil
	}

	name, _ := raw[KeyPlatform].(string)
	if name == "" {
		return Platform{}, nil, &schema.ValidationError{
			Path:       []string{KeyPlatform},
			Constraint: fmt.Sprintf("required key missing, available: %v", c.platformNames(domain)),
			Err:        schema.ErrMissingKey,
		}
	}
	p, ok := c.Lookup(domain, name)
	if !ok {
		return Platform{}, nil, &schema.ValidationError{
			Path:       []string{KeyPlatform},
			Constraint: fmt.Sprintf("unknown platform %q, available: %v", name, c.platformNames(domain)),
			Err:        ErrUnknownComponent,
		}
	}

	body := make(map[string]any, len(raw)-1)
	for k, v := range raw {
		if k != KeyPlatform {
			body[k] = v
		}
	}
	return p, body, nil
}

// Generate calls ToCode once per entry, highest priority first and in
// document order within a priority. The first failure stops generation and
// is returned as a *RegistrationError.
func Generate(c *Catalog, p *codegen.Program, entries []Entry) error {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Platform.Priority > ordered[j].Platform.Priority
	})

	seen := make(map[string]bool)
	for _, e := range ordered {
		requireComponents(c, p, e.Platform, seen)
		if e.Platform.ToCode == nil {
			continue
		}
		if err := e.Platform.ToCode(p, e.Record); err != nil {
			return &RegistrationError{Path: e.Path, ID: e.Record.ID().Name, Err: err}
		}
	}
	return nil
}

func requireComponents(c *Catalog, p *codegen.Program, pl Platform, seen map[string]bool) {
	if seen[pl.Key()] {
		return
	}
	seen[pl.Key()] = true
	p.Require(pl.Domain)
	if pl.Name != "" {
		p.Require(pl.Name)
	}
	for _, dep := range pl.AutoLoad {
		if d, ok := c.Lookup(dep, ""); ok {
			requireComponents(c, p, d, seen)
		}
	}
}

// Build validates doc and generates it into a new program backed by registry.
// Nothing is generated when validation fails.
func Build(c *Catalog, doc *Document, registry *codegen.Registry) (*codegen.Program, error) {
	entries, err := Validate(c, doc)
	if err != nil {
		return nil, err
	}
	p := codegen.NewProgram(registry)
	if err := Generate(c, p, entries); err != nil {
		return nil, err
	}
	return p, nil
}
