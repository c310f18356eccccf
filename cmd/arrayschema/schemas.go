package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arrayschema/internal/validator"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/spf13/cobra"
)

func newSchemasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schemas",
		Aliases: []string{"schema"},
		Short:   "Manage the named schemas of the store",
	}
	cmd.AddCommand(
		newSchemasPutCmd(),
		newSchemasGetCmd(),
		newSchemasListCmd(),
		newSchemasDeleteCmd(),
		newSchemasLintCmd(),
	)
	return cmd
}

func newSchemasPutCmd() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "put NAME [FILE]",
		Short: "Store a schema document under NAME (reads stdin without FILE)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 2 {
				data, err = os.ReadFile(args[1])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			return withRegistry(cmd, func(reg *registry.Registry, _ *env) error {
				save := reg.Put
				if create {
					save = reg.Create
				}
				doc, err := save(cmd.Context(), args[0], data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored %s schema %q\n", doc.Kind, args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Fail if the name is already taken")
	return cmd
}

func newSchemasGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Print a stored schema as a {kind, schema} document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, func(reg *registry.Registry, _ *env) error {
				doc, err := reg.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			})
		},
	}
}

func newSchemasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored schema names",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, func(reg *registry.Registry, _ *env) error {
				names, err := reg.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newSchemasDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a stored schema",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, func(reg *registry.Registry, _ *env) error {
				return reg.Delete(cmd.Context(), args[0])
			})
		},
	}
}

func newSchemasLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Check that every stored schema still decodes",
		Long:  `Loads every stored schema and reports the ones that no longer decode, e.g. after manual edits to a file store.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			_, store, err := e.open()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := validator.ValidateStore(cmd.Context(), store.Schemas); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All schemas are valid! ✅")
			return nil
		},
	}
}
