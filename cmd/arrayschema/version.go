package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/arrayschema"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of arrayschema",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "arrayschema version %s\n", strings.TrimSpace(arrayschema.Version))
		},
	}
}
