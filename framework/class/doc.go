// Package class describes constructors the container can call by name.
//
// Go keeps no parameter names at runtime, so a class is a constructor
// function plus one ParamSpec per parameter:
//
//	func NewGreeter(logger *zap.Logger, greeting string) *Greeter { ... }
//
//	classes := class.NewRegistry(
//	    class.MustNew("Greeter", NewGreeter,
//	        class.Arg("logger"),
//	        class.Arg("greeting", class.Default("Hello")),
//	    ),
//	)
//
// Parameter types come from the signature. Pointers to structs, structs and
// non-empty interfaces are concrete and can be resolved by type; everything
// else is primitive and needs a binding, an override or a default. An `any`
// parameter is untyped unless class.Of names the class whose product it
// expects.
//
// Callables are the same thing without a name and are used for factory
// callbacks:
//
//	cb := class.MustFunc(func(cfg *config.Config) *Mailer { ... }, class.Arg("config"))
package class
