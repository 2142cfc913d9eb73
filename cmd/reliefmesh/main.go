package main

import (
	"os"

	"github.com/reliefmesh/reliefmesh/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
