// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"driftc/grammar"
)

// main is the `-print-cst` debug entry point: it runs drift source
// through the tooling grammar (grammar.ParseFile), a second,
// declarative parse independent of the one the compiler and LSP use,
// and prints the resulting CST. It does not run the real compiler
// pipeline; for that, see cmd/driftc.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: driftc-print-cst <file.ka>")
		os.Exit(1)
	}

	path := os.Args[1]
	program, err := grammar.ParseFile(path)
	if err != nil {
		os.Exit(1)
	}

	fmt.Println("Parsed CST:")
	fmt.Print(program.String())

	color.Green("✅ Parsed %s", path)
}
