/*
Package registry keeps named schema documents in a ports.SchemaStore and
validates containers against them.

	reg := registry.New(file.New("schemas"), registry.WithLogger(logger))
	if _, err := reg.Put(ctx, "temps", data); err != nil { ... }
	err := reg.Validate(ctx, "temps", container)

Every validation fires the observability hooks given with WithHooks.
*/
package registry
