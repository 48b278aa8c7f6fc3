// Package main is the entry point for the cxdoc CLI tool.
package main

import (
	"github.com/cxdoc/cxdoc/internal/cmd"
)

func main() {
	cmd.Execute()
}
