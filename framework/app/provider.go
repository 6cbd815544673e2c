package app

import (
	"go.uber.org/multierr"

	"github.com/km-arc/go-container/framework/container"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider contributes to the application in two phases.
//
// Register runs before the container exists: it adds classes, service
// declarations, loaders and binding modules to the builder. Boot runs after
// the container is built, so it may resolve services.
//
//	type MailServiceProvider struct{ app.BaseProvider }
//
//	func (p *MailServiceProvider) Register(b *app.Builder) error {
//	    b.Classes().MustRegister(class.MustNew("SmtpMailer", NewSmtpMailer, class.Arg("config")))
//	    b.Service("mailer", container.Definition{ClassName: "SmtpMailer"})
//	    return nil
//	}
type ServiceProvider interface {
	Register(b *Builder) error
	Boot(c *container.Container) error
}

// BaseProvider is an embeddable no-op Boot.
type BaseProvider struct{}

func (BaseProvider) Boot(*container.Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry runs the Register and Boot phases of its providers in the
// order they were added.
type ProviderRegistry struct {
	providers  []ServiceProvider
	added      map[ServiceProvider]bool
	registered bool
	booted     bool
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{added: make(map[ServiceProvider]bool)}
}

// Add queues a provider. Adding the same provider twice is a no-op.
func (r *ProviderRegistry) Add(providers ...ServiceProvider) {
	for _, p := range providers {
		if p == nil || r.added[p] {
			continue
		}
		r.added[p] = true
		r.providers = append(r.providers, p)
	}
}

// Register runs every provider's Register against b, stopping at the first
// error. It runs once.
func (r *ProviderRegistry) Register(b *Builder) error {
	if r.registered {
		return nil
	}
	r.registered = true
	for _, p := range r.providers {
		if err := p.Register(b); err != nil {
			return err
		}
	}
	return nil
}

// Boot runs every provider's Boot against c and returns their combined
// errors. It runs once.
func (r *ProviderRegistry) Boot(c *container.Container) error {
	if r.booted {
		return nil
	}
	r.booted = true
	var err error
	for _, p := range r.providers {
		err = multierr.Append(err, p.Boot(c))
	}
	return err
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the providers in order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
