package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/axiomqa/internal/domain"
)

func newAxiomsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "axioms",
		Short: "List the loaded axioms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.build(cmd)
			if err != nil {
				return err
			}
			printAxiomList(cmd.OutOrStdout(), app.Store.List())
			return nil
		},
	}
}

func printAxiomList(w io.Writer, axioms []domain.Axiom) {
	if len(axioms) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no axioms loaded"))
		return
	}
	for _, a := range axioms {
		fmt.Fprintf(w, "%s %s %s\n",
			citationStyle.Render(string(a.ID)),
			mutedStyle.Render("("+a.Category+")"),
			a.Subject+": "+a.Description)
	}
}
