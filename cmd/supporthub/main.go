package main

import (
	"os"

	"github.com/supporthub/supporthub-client/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
