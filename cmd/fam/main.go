package main

import (
	"os"

	"github.com/lystzs/family-asset-manager/cmd/fam/commands"
)

// main is the entry point for the family asset manager CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fam [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
