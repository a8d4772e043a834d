package catalog

import "fmt"

// ServiceProvider contributes a group of components to a catalog.
//
//	type MailProvider struct{}
//
//	func (MailProvider) Register(c *catalog.Catalog) error {
//	    return c.Component("mailer").Needs("config").Provide(newMailer)
//	}
type ServiceProvider interface {
	Register(c *Catalog) error
}

// ProviderFunc adapts a function to ServiceProvider.
type ProviderFunc func(c *Catalog) error

func (f ProviderFunc) Register(c *Catalog) error { return f(c) }

// Use registers every provider in order, stopping at the first failure.
func (c *Catalog) Use(providers ...ServiceProvider) error {
	for _, p := range providers {
		if err := p.Register(c); err != nil {
			return fmt.Errorf("catalog: provider %T: %w", p, err)
		}
	}
	return nil
}
