// Package ui formats command output: errors, warnings, success lines and
// entity summary tables.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level represents the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message describes a formatted problem report
type Message struct {
	Level        Level
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func palette(level Level, noColor bool) (header, body *color.Color, symbol string) {
	switch level {
	case LevelWarning:
		header, body, symbol = color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case LevelInfo:
		header, body, symbol = color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		header, body, symbol = color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}
	return header, body, symbol
}

// Format renders m
//
// Example output:
//
//	❌ ENTITY NOT FOUND: Acount
//	   Entity 'Acount' is not defined.
//
//	   Did you mean: Account?
//
//	   → List entities: ormschema inspect
func Format(m Message) string {
	var b strings.Builder
	header, body, symbol := palette(m.Level, m.NoColor)

	if m.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), firstLine(m.Problem))
		if m.Problem != "" {
			body.Fprintf(&b, "   %s\n", m.Problem)
		}
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}

	if m.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", m.Consequence)
	}

	if len(m.Suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if m.NoColor {
			yellow.DisableColor()
		}
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}

	if len(m.HelpCommands) > 0 {
		cyan := color.New(color.FgCyan)
		if m.NoColor {
			cyan.DisableColor()
		}
		b.WriteString("\n")
		for _, cmd := range m.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Write writes the formatted message to w
func Write(w io.Writer, m Message) {
	fmt.Fprint(w, Format(m))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// ConfigurationError reports an invalid configuration file or definition tree
func ConfigurationError(err error, noColor bool) string {
	return Format(Message{
		Level:       LevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     err.Error(),
		Consequence: "No schema was written.",
		HelpCommands: []string{
			"View config: cat ormschema.yaml",
			"Get help: ormschema --help",
		},
		NoColor: noColor,
	})
}

// CompileError reports a failed compilation run
func CompileError(err error, noColor bool) string {
	return Format(Message{
		Level:       LevelError,
		Context:     "COMPILE FAILED",
		Problem:     err.Error(),
		Consequence: "No schema was written.",
		HelpCommands: []string{
			"Show diagnostics: ormschema compile --log-level debug",
			"Get help: ormschema compile --help",
		},
		NoColor: noColor,
	})
}

// EntityNotFoundError reports an entity missing from the compiled schema
func EntityNotFoundError(name string, suggestions []string, noColor bool) string {
	return Format(Message{
		Level:       LevelError,
		Context:     "ENTITY NOT FOUND",
		Problem:     fmt.Sprintf("Entity '%s' is not defined.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"List entities: ormschema inspect",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return Format(Message{Level: LevelWarning, Problem: message, NoColor: noColor})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return Format(Message{Level: LevelInfo, Problem: message, NoColor: noColor})
}
