package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/arrayschema/internal/presentation/describe"
	"github.com/aretw0/arrayschema/internal/presentation/graph"
	"github.com/aretw0/arrayschema/internal/presentation/tui"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	var name, format string
	cmd := &cobra.Command{
		Use:   "describe [FILE]",
		Short: "Render a schema as markdown, a Mermaid graph or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				v     schema.Validator
				title string
				err   error
			)
			switch {
			case len(args) == 1 && name == "":
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				v, err = readSchemaFile(args[0])
			case len(args) == 0 && name != "":
				title = name
				err = withRegistry(cmd, func(reg *registry.Registry, _ *env) error {
					var cerr error
					v, cerr = reg.Compile(cmd.Context(), name)
					return cerr
				})
			default:
				return errors.New("describe takes either FILE or --name")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "markdown", "md":
				rendered, err := tui.NewRenderer(out)(describe.Markdown(title, v))
				if err != nil {
					return err
				}
				fmt.Fprint(out, rendered)
			case "mermaid":
				fmt.Fprint(out, graph.GenerateMermaid(title, v))
			case "json":
				data, err := schema.MarshalIndent(v, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			default:
				return fmt.Errorf("unknown format %q: use markdown, mermaid or json", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Stored schema to describe")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown, mermaid or json")
	return cmd
}
