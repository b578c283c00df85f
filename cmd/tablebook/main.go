package main

import (
	"os"

	"github.com/dom/tablebook/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
