package main

import (
	"os"

	"github.com/urbanpulse/sentinel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
