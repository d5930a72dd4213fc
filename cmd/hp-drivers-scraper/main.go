// Package main is the entry point for the hp-drivers-scraper CLI.
package main

import (
	"os"

	"github.com/rgl/hp-drivers-scraper/cmd/hp-drivers-scraper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
