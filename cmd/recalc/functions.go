package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/recalc/internal/errors"
	"github.com/vango-dev/recalc/pkg/function"
)

func functionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "functions [name...]",
		Short: "List the builtin functions",
		Long: `List the builtin functions with their signatures.

Examples:
  recalc functions
  recalc functions sum abs
  recalc functions --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := function.Builtins()
			fns := reg.Functions()
			if len(args) > 0 {
				fns = fns[:0]
				for _, name := range args {
					f, ok := reg.Lookup(name)
					if !ok {
						return errors.New("E002").WithSubject(name)
					}
					fns = append(fns, f)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				type entry struct {
					Name       string `json:"name"`
					Summary    string `json:"summary"`
					Signatures string `json:"signatures"`
				}
				entries := make([]entry, len(fns))
				for i, f := range fns {
					entries[i] = entry{f.Name(), f.Summary(), f.Constraints().Describe()}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, f := range fns {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name(), f.Constraints().Describe(), f.Summary())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")

	return cmd
}
