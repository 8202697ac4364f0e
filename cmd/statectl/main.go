package main

import (
	"os"

	"github.com/goliatone/go-statestore/cmd/statectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
