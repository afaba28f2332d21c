package main

import (
	"os"

	"github.com/spigell/hire-picker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
