// Command storefront is a terminal client for the Arboom shop: browse the
// catalog, keep a cart, check out and manage orders.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/IhossainpHero/Arboom-bd/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := cli.NewCommand(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
}
