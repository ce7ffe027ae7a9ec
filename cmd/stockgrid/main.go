package main

import (
	"os"

	"github.com/hyunwoo/stockgrid/cmd/stockgrid/commands"
)

// main is the entry point for the stockgrid CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
