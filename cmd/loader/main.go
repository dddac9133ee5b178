package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := NewLoadCommand().Execute(); err != nil {
		color.Red("load failed: %v", err)
		os.Exit(1)
	}
}
