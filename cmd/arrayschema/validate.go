package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/arrayschema/internal/presentation/tui"
	"github.com/aretw0/arrayschema/pkg/labeled"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var schemaFile, name string
	cmd := &cobra.Command{
		Use:   "validate CONTAINER",
		Short: "Validate a container document against a schema",
		Long: `Reads a JSON or YAML array or table document and validates it against
a schema file (--schema) or a schema stored in the registry (--name).
The first violation is reported and the command exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (schemaFile == "") == (name == "") {
				return errors.New("exactly one of --schema or --name is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var verr error
			label := name
			if schemaFile != "" {
				label = schemaFile
				v, err := readSchemaFile(schemaFile)
				if err != nil {
					return err
				}
				container, err := labeled.ParseDocument(data)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				verr = v.Validate(container)
			} else {
				err := withRegistry(cmd, func(reg *registry.Registry, _ *env) error {
					if _, err := reg.Compile(cmd.Context(), name); err != nil {
						return err
					}
					container, err := labeled.ParseDocument(data)
					if err != nil {
						return fmt.Errorf("%s: %w", args[0], err)
					}
					verr = reg.Validate(cmd.Context(), name, container)
					return nil
				})
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.Status(out, label, verr))
			if verr != nil {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "Schema document to validate against")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Stored schema to validate against")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check that schema documents are well-formed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := false
			for _, path := range args {
				v, err := readSchemaFile(path)
				if err != nil {
					failed = true
					fmt.Fprintln(out, tui.Status(out, path, err))
					continue
				}
				fmt.Fprintf(out, "%s (%s)\n", tui.Status(out, path, nil), schema.Describe(v))
			}
			if failed {
				return errValidationFailed
			}
			return nil
		},
	}
}
