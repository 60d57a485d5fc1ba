// Package main provides the entry point for the Shelfmate command-line client.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/shelfmateapp/shelfmate/internal/cli"
)

var version = "dev"

func main() {
	root, cleanup := cli.NewRootCmd()

	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}
