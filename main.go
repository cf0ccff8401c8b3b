package main

import (
	"os"

	"github.com/mariondam/Wattflex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
