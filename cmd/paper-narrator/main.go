package main

import (
	"os"

	"github.com/mdindoost/paper-narrator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
