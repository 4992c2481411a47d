// Package main is the postwatch entry point.
package main

import (
	"fmt"
	"os"

	"postwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
