package main

import (
	"os"

	"github.com/guilhermegouw/atelier/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
