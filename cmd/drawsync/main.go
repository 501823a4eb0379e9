// Command drawsync keeps a reconciled store of Thai government lottery
// results from the results API, official result sheets and mirrors.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(build)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
