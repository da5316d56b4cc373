// Package main is the entry point for the trackademic CLI.
package main

import (
	"github.com/trackademic/trackademic/cmd"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/store"
)

func main() {
	err := cmd.Execute()
	store.CloseStore()
	if err != nil {
		contract.LogFatal("Error running command", err)
	}
}
