/*
Package ports defines the driven ports (interfaces) for schema persistence.

# Key Interfaces

  - SchemaStore: Saves, loads, deletes and lists named schema Documents.
  - Locker: Serializes writers of one schema name across processes.

RunSchemaStoreContract is a reusable test suite every SchemaStore adapter
runs against itself.
*/
package ports
