// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"driftc/internal/ast"
	"driftc/internal/errors"
	"driftc/internal/parser"
	"driftc/internal/semantic"
	"driftc/internal/types"
	"driftc/repl"
)

// main runs the real driftc pipeline over one file: scan, parse, then
// dataflow-analyze every function and method, printing any parse or
// smartcast diagnostics Rust-style via internal/errors.ErrorReporter
// (spec.md's diagnostics are "grounded on kanso/internal/errors/reporter.go").
// With no file argument it drops into the REPL instead.
func main() {
	if len(os.Args) < 2 {
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	prog, parseErrs := parser.ParseSource(string(source))
	reporter := errors.NewErrorReporter(path, string(source))

	if len(parseErrs) > 0 {
		for _, pe := range parseErrs {
			printCompilerError(reporter, parseErrorToCompilerError(path, pe))
		}
		os.Exit(1)
	}

	resolver := semantic.NewResolver(types.NewTypeContext(types.NewRegistry()))
	results := resolver.AnalyzeProgram(prog)

	if errs := resolver.Errors(); len(errs) > 0 {
		for _, e := range errs {
			printCompilerError(reporter, e)
		}
		os.Exit(1)
	}

	for _, res := range results {
		fmt.Printf("fn %s: %d unreachable item(s)\n", res.Fn.Name.Value, len(res.Unreachable))
	}

	color.Green("✅ %s: no diagnostics", path)
}

func parseErrorToCompilerError(path string, pe parser.ParseError) errors.CompilerError {
	return errors.CompilerError{
		Level:   errors.Error,
		Code:    "E0000",
		Message: pe.Message,
		Position: ast.Position{
			Filename: path,
			Offset:   pe.Position.Offset,
			Line:     pe.Position.Line,
			Column:   pe.Position.Column,
		},
		Length: 1,
	}
}

func printCompilerError(reporter *errors.ErrorReporter, e errors.CompilerError) {
	fmt.Print(reporter.FormatError(e))
}
