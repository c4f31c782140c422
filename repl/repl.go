// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"

	"driftc/internal/ast"
	"driftc/internal/errors"
	"driftc/internal/parser"
	"driftc/internal/semantic"
	"driftc/internal/types"
)

const PROMPT = ">> "

// Start reads drift source one line at a time, parses and
// dataflow-analyzes it, and reports the resulting diagnostics or
// per-function unreachable-code findings — a REPL over the same
// pipeline driftc runs on a whole file.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		prog, parseErrs := parser.ParseSource(line)
		reporter := errors.NewErrorReporter("<repl>", line)

		if len(parseErrs) > 0 {
			for _, pe := range parseErrs {
				fmt.Fprint(out, reporter.FormatError(errors.CompilerError{
					Level:   errors.Error,
					Code:    "E0000",
					Message: pe.Message,
					Position: ast.Position{
						Filename: "<repl>",
						Offset:   pe.Position.Offset,
						Line:     pe.Position.Line,
						Column:   pe.Position.Column,
					},
				}))
			}
			continue
		}

		resolver := semantic.NewResolver(types.NewTypeContext(types.NewRegistry()))
		results := resolver.AnalyzeProgram(prog)

		for _, e := range resolver.Errors() {
			fmt.Fprint(out, reporter.FormatError(e))
		}
		for _, res := range results {
			fmt.Fprintf(out, "fn %s: %d unreachable item(s)\n", res.Fn.Name.Value, len(res.Unreachable))
		}
	}
}
