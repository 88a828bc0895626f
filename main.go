package main

import (
	"os"

	"github.com/abhisek/eduindia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
