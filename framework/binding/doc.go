// Package binding holds the explicit wiring rules consulted by the injectable
// factory: "when building class X, satisfy parameter Y with ...".
//
// A binding resolves to a container service, a fresh instance of another
// class, a literal value or the result of a callback. Bindings are keyed by
// (class, parameter); a binding with no class is global and applies when the
// class has no binding of its own.
//
//	b := binding.NewBuilder()
//	b.When("Greeter").Needs("logger").GiveService("fileLogger")
//	b.When("Importer").Needs("parser").GiveImplementation("MimeParser")
//	b.Global().Needs("timezone").GiveValue("UTC")
//	reg, err := b.Build()
//
// Modules apply rules in order and are how the application assembles the
// registry at boot:
//
//	reg, err := binding.Load(
//	    binding.FileModule(fsys, "bindings.yaml"),
//	    binding.ModuleFunc(func(b *binding.Builder) error { ...; return nil }),
//	)
//
// The registry is immutable once built.
package binding
