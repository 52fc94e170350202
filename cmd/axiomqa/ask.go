package main

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/axiomqa/internal/app/citation"
	"github.com/PabloGalante/axiomqa/internal/domain"
)

func newAskCmd(root *rootOptions) *cobra.Command {
	var (
		noStream   bool
		showPrompt bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Answer a question from the constitution",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			app, err := root.build(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showPrompt {
				fmt.Fprintln(out, headingStyle.Render("Prompt"))
				fmt.Fprintln(out, app.Engine.Prompt(question))
				fmt.Fprintln(out)
			}

			if noStream {
				answer, err := app.Engine.Invoke(cmd.Context(), question)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, answer)
				return nil
			}

			return printStream(out, app.Engine.InvokeStreaming(cmd.Context(), question))
		},
	}

	cmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for the full answer instead of streaming it")
	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "print the composed prompt before the answer")
	return cmd
}

// printStream writes text as it arrives, highlights citations and ends
// with the cited axioms in first-seen order.
func printStream(w io.Writer, chunks iter.Seq2[domain.ResponseChunk, error]) error {
	var refs citation.References
	for chunk, err := range chunks {
		if err != nil {
			fmt.Fprintln(w)
			return errors.Wrap(err, "streaming answer")
		}

		switch c := chunk.(type) {
		case domain.CitationContent:
			refs.Observe(c)
			fmt.Fprint(w, citationStyle.Render(c.Text()))
		default:
			fmt.Fprint(w, c.Text())
		}
	}
	fmt.Fprintln(w)

	if refs.Len() == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("References"))
	for _, a := range refs.Axioms() {
		printAxiom(w, a)
	}
	return nil
}

func printAxiom(w io.Writer, a domain.Axiom) {
	fmt.Fprintf(w, "\n%s %s\n", citationStyle.Render(a.CitationMarker()), labelStyle.Render(a.Subject))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Object:     "), a.Entity)
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Link:       "), a.Trigger)
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Conditions: "), a.Conditions)
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Description:"), a.Description)
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Category:   "), a.Category)
}
