// Command axiomqa asks questions about the loaded constitution from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
)

func main() {
	// Ctrl-C stops a streaming answer and releases the model connection.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, mutedStyle.Render("hint: "+hint))
		}
		os.Exit(1)
	}
}
