// Package main provides the entry point for the Tavern CLI.
package main

import (
	"fmt"
	"os"

	"github.com/loupgaroublond/tavern/cmd/tavern/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
