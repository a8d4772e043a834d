// Package catalog holds the component descriptors a resolver builds from.
//
// # Registering components
//
//	cat := catalog.New()
//
//	// Full descriptor
//	cat.MustRegister(catalog.Descriptor{
//	    Name:         "db",
//	    Dependencies: []string{"config", "unload"},
//	    Factory:      newDB,
//	    Startup:      true,
//	})
//
//	// Fluent
//	err := cat.Component("cache").
//	    Needs("db", "options").
//	    Settings(map[string]any{"ttl": "{1}|60"}).
//	    Alias("kv").
//	    Provide(newCache)
//
//	// Pre-built value
//	err = cat.Component("version").ProvideValue("1.4.2")
//
// Names may not contain the expression delimiters '/', '|', '?', '#' or the
// immediate modifier '!'. The names "options" and "unload" are resolved by
// the container itself and "resolver" is served by the kernel, so none of the
// three may be registered.
//
// # Catalog files
//
// Components can also be declared in YAML against a set of Kinds:
//
//	# catalog.yaml
//	- logger                 # shorthand for {kind: logger}
//	- kind: static
//	  name: banner
//	  startup: true
//	  options: {text: "{1}|welcome"}
//	  aliases: [motd]
//
//	cat, err := catalog.LoadFile("catalog.yaml", kinds)
//
// A file whose root is not a sequence fails with InvalidConfigurationError.
package catalog
