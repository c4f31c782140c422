package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"driftc/internal/errors"
	"driftc/internal/parser"
)

// ConvertParseErrors transforms parser errors into LSP diagnostics for IDE display.
// These provide immediate feedback about syntax issues like missing brackets,
// semicolons, commas in declarations, and other parsing problems. Scanner
// errors are already folded into parser.ParseError by ParseSource, so this
// is the only conversion parse failures need.
func ConvertParseErrors(parseErrors []parser.ParseError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, parseErr := range parseErrors {
		diagnostic := protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(parseErr.Position.Line - 1),   // Convert to 0-based indexing
					Character: uint32(parseErr.Position.Column - 1), // Convert to 0-based indexing
				},
				End: protocol.Position{
					Line:      uint32(parseErr.Position.Line - 1),
					Character: uint32(parseErr.Position.Column + 5), // Rough span for visibility
				},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("driftc-parser"),
			Message:  parseErr.Message,
		}
		diagnostics = append(diagnostics, diagnostic)
	}

	return diagnostics
}

// ConvertSemanticErrors transforms dataflow/resolver diagnostics
// (missing returns, unreachable code, and whatever internal/errors'
// semantic_errors.go constructors are wired to) into LSP diagnostics.
func ConvertSemanticErrors(semanticErrors []errors.CompilerError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, e := range semanticErrors {
		length := e.Length
		if length <= 0 {
			length = 1
		}
		diagnostic := protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(e.Position.Line - 1),
					Character: uint32(e.Position.Column - 1),
				},
				End: protocol.Position{
					Line:      uint32(e.Position.Line - 1),
					Character: uint32(e.Position.Column - 1 + length),
				},
			},
			Severity: ptrSeverity(severityForLevel(e.Level)),
			Source:   ptrString("driftc-semantic"),
			Message:  e.Code + ": " + e.Message,
		}
		diagnostics = append(diagnostics, diagnostic)
	}

	return diagnostics
}

func severityForLevel(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	case errors.Help:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
