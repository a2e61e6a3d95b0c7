package main

import (
	"os"

	"github.com/mcuelenaere/b2/cmd/b2dump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
