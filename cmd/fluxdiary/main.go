package main

import (
	"os"

	"github.com/fluxdiary/fluxdiary/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
