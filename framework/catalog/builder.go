package catalog

// Builder implements the fluent registration API.
//
//	err := cat.Component("mailer").
//	    Needs("config", "logger|noop-logger", "options").
//	    Settings(map[string]any{"host": "{1}|localhost"}).
//	    Startup().
//	    Provide(func(ctx context.Context, deps []any) (any, error) {
//	        return mail.New(deps[0].(*config.Config)), nil
//	    })
type Builder struct {
	catalog    *Catalog
	descriptor Descriptor
}

// Component starts a registration chain for name.
func (c *Catalog) Component(name string) *Builder {
	return &Builder{catalog: c, descriptor: Descriptor{Name: name}}
}

// Needs appends dependency expressions.
func (b *Builder) Needs(deps ...string) *Builder {
	b.descriptor.Dependencies = append(b.descriptor.Dependencies, deps...)
	return b
}

// Settings sets the options template.
func (b *Builder) Settings(v any) *Builder {
	b.descriptor.Settings = v
	return b
}

// Startup marks the component for resolution at load time.
func (b *Builder) Startup() *Builder {
	b.descriptor.Startup = true
	return b
}

// Alias adds alternative names.
func (b *Builder) Alias(aliases ...string) *Builder {
	b.descriptor.Aliases = append(b.descriptor.Aliases, aliases...)
	return b
}

// Provide registers the component with factory f.
func (b *Builder) Provide(f Factory) error {
	b.descriptor.Factory = f
	return b.catalog.Register(b.descriptor)
}

// ProvideValue registers the component as a pre-built value.
func (b *Builder) ProvideValue(v any) error {
	return b.Provide(Value(v))
}
