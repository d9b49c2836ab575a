// Package main provides the cssprite CLI tool for generating sprite sheets
// and their stylesheets.
package main

import (
	"fmt"
	"os"

	"github.com/yacobolo/cssprite/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		useColors := logging.ShouldUseColors(getBoolWithFallback("color", "color", false))
		fmt.Fprintf(os.Stderr, "%s %v\n", logging.RenderStyle(logging.StyleRed, "Error:", useColors), err)
		os.Exit(1)
	}
}
