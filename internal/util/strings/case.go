// Package strings holds the naming helpers shared by the schema compiler.
package strings

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
)

// ToSnakeCase converts camelCase and PascalCase names to snake_case.
// Runs of capitals stay together: HTMLPage becomes html_page.
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && runes[i-1] != '_' {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// UpperFirst upper-cases the first letter
func UpperFirst(s string) string {
	if s == "" {
		return ""
	}
	return inflect.Capitalize(s)
}

// LowerFirst lower-cases the first letter
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// TableName returns the storage table of an entity
func TableName(entity string) string {
	return ToSnakeCase(entity)
}

// ColumnName returns the storage column of a field
func ColumnName(field string) string {
	return ToSnakeCase(field)
}

// JoinName builds the default junction name of two entities: both names
// with a lower-cased first letter, sorted, then joined camel-case.
func JoinName(a, b string) string {
	first, second := LowerFirst(a), LowerFirst(b)
	if second < first {
		first, second = second, first
	}
	return first + UpperFirst(second)
}
