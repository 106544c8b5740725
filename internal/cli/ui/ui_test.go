package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		contains []string
		absent   []string
	}{
		{
			name: "context and problem",
			msg:  Message{Level: LevelError, Context: "compile failed", Problem: "link has no entity"},
			contains: []string{
				"❌ COMPILE FAILED: link has no entity",
				"   link has no entity",
			},
		},
		{
			name: "multi-line problem uses the first line in the header",
			msg:  Message{Context: "config", Problem: "first\nsecond"},
			contains: []string{
				"CONFIG: first\n",
			},
		},
		{
			name: "suggestions and help",
			msg: Message{
				Problem:      "Entity 'Acount' is not defined.",
				Suggestions:  []string{"Account"},
				HelpCommands: []string{"List entities: ormschema inspect"},
			},
			contains: []string{
				"Did you mean: Account?",
				"→ List entities: ormschema inspect",
			},
		},
		{
			name:     "warning",
			msg:      Message{Level: LevelWarning, Problem: "cache unavailable"},
			contains: []string{"⚠️ cache unavailable"},
			absent:   []string{"Did you mean"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.msg.NoColor = true
			out := Format(tt.msg)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Format() missing %q\nGot:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(out, unwanted) {
					t.Errorf("Format() should not contain %q\nGot:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	err := errors.New("index.max_length must be at least 16, got: 8")

	if out := ConfigurationError(err, true); !strings.Contains(out, "CONFIGURATION ERROR") || !strings.Contains(out, err.Error()) {
		t.Errorf("ConfigurationError() = %q", out)
	}
	if out := CompileError(err, true); !strings.Contains(out, "COMPILE FAILED") {
		t.Errorf("CompileError() = %q", out)
	}
	if out := EntityNotFoundError("Acount", []string{"Account"}, true); !strings.Contains(out, "Did you mean: Account?") {
		t.Errorf("EntityNotFoundError() = %q", out)
	}
	if out := FormatSuccess("compiled 3 entities", true); out != "✓ compiled 3 entities" {
		t.Errorf("FormatSuccess() = %q", out)
	}

	var buf bytes.Buffer
	WriteSuccess(&buf, "done", true)
	if buf.String() != "✓ done\n" {
		t.Errorf("WriteSuccess() wrote %q", buf.String())
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"Account", "Contact", "Lead", "Opportunity"}

	tests := []struct {
		target string
		want   []string
	}{
		{"Acount", []string{"Account"}},
		{"account", []string{"Account"}},
		{"Contcat", []string{"Contact"}},
		{"Meeting", []string{}},
	}

	for _, tt := range tests {
		got := Suggest(tt.target, candidates)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Suggest(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"same", "same", 0},
		{"größe", "grösse", 2},
	}

	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Entity", "Fields", "Indexes")
	table.AddRow("Account", "12", "3")
	table.AddRow("AccountContact", "5")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Entity          Fields  Indexes" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "──────────────") {
		t.Errorf("unexpected separator %q", lines[1])
	}
	if lines[2] != "Account         12      3" {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[3] != "AccountContact  5" {
		t.Errorf("unexpected short row %q", lines[3])
	}
}
