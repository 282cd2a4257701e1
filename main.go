package main

import (
	"os"

	"github.com/mintlabs/mint-backend/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
