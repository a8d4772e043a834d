package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/km-arc/go-resolver/framework/validation"
)

// Reserved dependency names, resolved by the container instead of the catalog.
const (
	OptionsDependency = "options"
	UnloadDependency  = "unload"
)

// ResolverDependency names the kernel that owns the container. The kernel
// serves it, so no component or alias may take the name.
const ResolverDependency = "resolver"

// reservedChars may not appear in a component name: they are the expression
// delimiters plus the immediate modifier.
const reservedChars = "/|?#!"

// ── Descriptor ────────────────────────────────────────────────────────────────

// Factory builds a component from its resolved dependencies, given in the
// order the descriptor declares them.
type Factory func(ctx context.Context, deps []any) (any, error)

// Descriptor declares one component.
type Descriptor struct {
	Name string
	// Dependencies are dependency expressions, resolved in parallel and passed
	// to Factory in this order. "options" and "unload" are reserved.
	Dependencies []string
	Factory      Factory
	// Settings is the options template. Its strings are expressions in which a
	// whole-token "{n}" stands for the n-th parameter of the requesting
	// expression.
	Settings any
	// Startup marks the component for resolution by Load.
	Startup bool
	// Aliases are alternative names the component can be requested by.
	Aliases []string
}

// Value returns a Factory that always yields v.
func Value(v any) Factory {
	return func(context.Context, []any) (any, error) { return v, nil }
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// Catalog is the registry of component descriptors. It is safe for
// concurrent use and read-only to the container.
type Catalog struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
	aliases     map[string]string
	order       []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		descriptors: make(map[string]*Descriptor),
		aliases:     make(map[string]string),
	}
}

// Register validates d and adds it to the catalog.
func (c *Catalog) Register(d Descriptor) error {
	if err := validate(d); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taken(d.Name) {
		return &DuplicateRegistrationError{Name: d.Name}
	}
	for _, a := range d.Aliases {
		if a == d.Name || c.taken(a) {
			return &DuplicateRegistrationError{Name: a}
		}
	}

	d.Dependencies = append([]string(nil), d.Dependencies...)
	d.Aliases = append([]string(nil), d.Aliases...)
	c.descriptors[d.Name] = &d
	for _, a := range d.Aliases {
		c.aliases[a] = d.Name
	}
	c.order = append(c.order, d.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(d Descriptor) {
	if err := c.Register(d); err != nil {
		panic(err)
	}
}

// Alias registers an alternative name for an existing component.
func (c *Catalog) Alias(name, alias string) error {
	if err := validateName("alias", alias); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.descriptors[c.canonical(name)]
	if !ok {
		return fmt.Errorf("catalog: cannot alias unknown component %q", name)
	}
	if c.taken(alias) {
		return &DuplicateRegistrationError{Name: alias}
	}
	c.aliases[alias] = d.Name
	return nil
}

// Get returns the descriptor registered under name or one of its aliases.
func (c *Catalog) Get(name string) (*Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.descriptors[c.canonical(name)]
	return d, ok
}

// AliasesOf returns every alias of the named component, sorted.
func (c *Catalog) AliasesOf(name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for alias, target := range c.aliases {
		if target == name {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Names returns every registered component name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.descriptors))
	for name := range c.descriptors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// StartupDependencies lists the startup components in registration order.
func (c *Catalog) StartupDependencies() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, name := range c.order {
		if c.descriptors[name].Startup {
			out = append(out, name)
		}
	}
	return out
}

// canonical resolves an alias to its component name (must hold mu).
func (c *Catalog) canonical(name string) string {
	if target, ok := c.aliases[name]; ok {
		return target
	}
	return name
}

// taken reports whether name is used as a name or alias (must hold mu).
func (c *Catalog) taken(name string) bool {
	_, isName := c.descriptors[name]
	_, isAlias := c.aliases[name]
	return isName || isAlias
}

// ── validation ────────────────────────────────────────────────────────────────

var nameRules = "required|max:256|not_in:" + OptionsDependency + "," + UnloadDependency + "," + ResolverDependency + "|excludes:" + reservedChars

func validateName(field, name string) error {
	v := validation.Make(map[string]string{field: name}, validation.Rules{field: nameRules})
	if v.Fails() {
		return &InvalidConfigurationError{Component: name, Err: v.Errors()}
	}
	return nil
}

func validate(d Descriptor) error {
	if err := validateName("name", d.Name); err != nil {
		return err
	}
	if d.Factory == nil {
		return &InvalidConfigurationError{Component: d.Name, Err: fmt.Errorf("factory is required")}
	}
	for i, dep := range d.Dependencies {
		if strings.TrimSpace(dep) == "" {
			return &InvalidConfigurationError{Component: d.Name, Err: fmt.Errorf("dependency #%d is empty", i+1)}
		}
	}
	for _, a := range d.Aliases {
		if err := validateName("alias", a); err != nil {
			return err
		}
	}
	return nil
}
