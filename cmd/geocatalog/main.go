// Package main provides the entry point for the geocatalog CLI tool.
package main

import (
	"github.com/hf-eolus/geocatalog/cmd/geocatalog/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
