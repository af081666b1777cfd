// errors.go: the diagnostic taxonomy and caret-snippet rendering
//
// What this file does
// -------------------
// This module defines the *Error diagnostic type shared by the lexer, parser,
// and evaluator, and turns those diagnostics into readable, Python-style
// error snippets with a caret pointing at the offending column. The primary
// entry point is `WrapErrorWithSource`, which recognizes `*LexError` (from
// lexer.go) and `*Error` (everything downstream), formats them, and returns a
// new `error` that contains a multi-line snippet:
//
//	PARSE ERROR at 3:12: unexpected token ')'
//
//	   2 | snuggle x = (1 + 2
//	   3 |              )
//	       |            ^
//	   4 | purr x;
//
// The snippet includes up to one line of context before and after the error,
// numbers the lines, and places a caret under the 1-based column.
//
// Diagnostic kinds
// ----------------
// The Kind field classifies the failure: lexing, parsing (including the
// REPL-only "incomplete input" kind), name resolution, type mismatch, range,
// general runtime, and promise rejection. The kind determines the header of
// the rendered snippet and lets callers branch (e.g. the REPL continues
// reading on DiagIncomplete).
//
// Behavior guarantees
// -------------------
//   - If `err` is a `*LexError` or `*Error`, the returned error's message is
//     a fully formatted, plain-text snippet (no ANSI colors).
//   - If `err` is anything else, it is returned unchanged.
//   - Line/column are treated as 1-based. If out of range, they are clamped
//     so the caret can be rendered safely. Empty source strings are handled.
package pawx

import (
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// DiagKind classifies a diagnostic.
type DiagKind int

const (
	DiagLex DiagKind = iota
	DiagParse
	DiagIncomplete // REPL-only: input ended mid-construct
	DiagName
	DiagType
	DiagRange
	DiagRuntime
	DiagRejection // a Future rejected and nothing handled it
)

func (k DiagKind) String() string {
	switch k {
	case DiagLex:
		return "LEX ERROR"
	case DiagParse, DiagIncomplete:
		return "PARSE ERROR"
	case DiagName:
		return "NAME ERROR"
	case DiagType:
		return "TYPE ERROR"
	case DiagRange:
		return "RANGE ERROR"
	case DiagRejection:
		return "UNHANDLED REJECTION"
	default:
		return "RUNTIME ERROR"
	}
}

// Error is the diagnostic type produced by the parser and the evaluator.
// Line/Col are 1-based; Col may be 0 when the position is unknown.
type Error struct {
	Kind DiagKind
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// IsIncomplete reports whether err marks input that ended mid-construct,
// which a REPL should answer by reading more lines.
func IsIncomplete(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == DiagIncomplete
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes lexer and engine diagnostics
// and leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	// Fall back to a name-less header (won't show "in <src>").
	return WrapErrorWithName(err, "", src)
}

func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		// Lexer Col is 0-based; render as 1-based.
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "LEX ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *Error:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, e.Kind.String(), srcName, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: helpers & rendering
   =========================== */

// prettyErrorStringLabeled builds a Python-like snippet with a header and a
// caret. It shows at most one previous and one next line when available.
// Coordinates are treated as 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad < 0 {
		caretPad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
