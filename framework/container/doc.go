// Package container provides the service container and the injectable
// factory.
//
// # Overview
//
// The Container hands out named singletons. A name is built on first Get and
// cached until the container is discarded. The InjectableFactory builds fresh
// objects of registered classes (see package class), resolving each
// constructor parameter from overrides, bindings (see package binding),
// same-named services, defaults, nil or a fresh instance of its type.
//
// # Container Lifecycle
//
//  1. Describe classes: classes := class.NewRegistry(class.MustNew(...))
//  2. Create: c, err := container.New(classes, container.WithConfiguration(defs), ...)
//  3. Resolve: v, err := c.Get("mailer")
//  4. Discard the container with the process or request it served
//
// # Declaring services
//
//	defs := container.Definitions{
//	    // built by the factory through constructor injection
//	    "mailer": {ClassName: "SmtpMailer"},
//	    // constructor called with these services, in order
//	    "importer": {ClassName: "Importer", Dependencies: []string{"mailer", "log"}},
//	    // built by a loader class's Load method
//	    "pool": {LoaderClassName: "PoolLoader"},
//	    // filled in at runtime with Set
//	    "user": {Settable: true},
//	}
//
// A loader override replaces everything else for its name:
//
//	container.WithLoader("router", container.LoaderFunc(func(r container.Resolver) (*routing.Router, error) {
//	    return routing.New(), nil
//	}))
//
// # Resolving
//
//	raw, err := c.Get("mailer")
//	mailer, err := container.Resolve[*SmtpMailer](c, "mailer")
//	ok := c.Has("mailer") // never builds
//
// # Fresh objects
//
//	runner, err := c.Factory().Create("ImportRunner")
//	runner, err := c.Factory().CreateWith("ImportRunner", map[string]any{"folder": "INBOX"})
//
// # Setter injection
//
//	type LoggerAware interface{ SetLogger(*zap.Logger) }
//
//	c, err := container.New(classes, container.WithAware(
//	    container.Aware("log", LoggerAware.SetLogger),
//	))
//
// # Concurrency
//
// Get is safe for concurrent use; concurrent first access to a name builds
// it once. A service that depends on itself, directly or through other
// services and classes, fails with a CyclicDependencyError.
package container
