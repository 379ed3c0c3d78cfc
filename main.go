package main

import (
	"os"

	"github.com/abhisek/kidquest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
