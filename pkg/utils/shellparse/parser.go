// Package shellparse splits a configured command string into argv the way a
// POSIX shell would, so the reprojection command can carry its own flags.
package shellparse

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnclosedQuote is returned when a quoted section never ends.
	ErrUnclosedQuote = errors.New("unclosed quote in command string")

	// ErrTrailingEscape is returned when the input ends with a backslash.
	ErrTrailingEscape = errors.New("trailing escape character at end of command")
)

// Split breaks input into words. Whitespace separates words; single quotes
// keep their content literally; double quotes keep their content except for
// \" \\ \$ and \`; a backslash outside quotes escapes the next character.
//
//	Split(`nona -z LZW`)                 => ["nona", "-z", "LZW"]
//	Split(`"/Applications/Hugin/nona"`)  => ["/Applications/Hugin/nona"]
func Split(input string) ([]string, error) {
	words := []string{}
	var word strings.Builder
	inWord := false
	var quote rune

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch {
		case ch == '\\' && quote != '\'':
			if i+1 >= len(runes) {
				return nil, ErrTrailingEscape
			}
			i++
			next := runes[i]
			if quote == '"' && !strings.ContainsRune("\"\\$`", next) {
				word.WriteRune('\\')
			}
			word.WriteRune(next)
			inWord = true

		case quote != 0 && ch == quote:
			quote = 0

		case quote == 0 && (ch == '\'' || ch == '"'):
			quote = ch
			inWord = true

		case quote == 0 && unicode.IsSpace(ch):
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}

		default:
			word.WriteRune(ch)
			inWord = true
		}
	}

	if quote != 0 {
		kind := "single"
		if quote == '"' {
			kind = "double"
		}
		return nil, fmt.Errorf("%w: unclosed %s quote", ErrUnclosedQuote, kind)
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}

// Join renders args as a command line, quoting where needed. It is used for
// logging the exact command that is run.
func Join(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = quote(arg)
	}
	return strings.Join(parts, " ")
}

func quote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsFunc(arg, needsQuote) {
		return arg
	}
	if !strings.Contains(arg, "'") {
		return "'" + arg + "'"
	}

	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range arg {
		if strings.ContainsRune("\"\\$`", ch) {
			b.WriteByte('\\')
		}
		b.WriteRune(ch)
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuote(ch rune) bool {
	return unicode.IsSpace(ch) || strings.ContainsRune("'\"\\$`", ch)
}
