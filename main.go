package main

import (
	"os"

	"github.com/dhashmi/portfolio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
