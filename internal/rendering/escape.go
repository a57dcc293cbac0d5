// Package rendering turns a normalized resume record into LaTeX markup for one of several layouts.
package rendering

import "strings"

// EscapeLaTeX escapes special LaTeX characters in text in a single pass, so the
// backslashes introduced by replacements are never escaped again.
// Special characters: \ { } $ & % # ^ _ ~
// Square brackets are braced so text placed after \item or \\ is never read as an
// optional argument.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '[':
			result.WriteString(`{[}`)
		case ']':
			result.WriteString(`{]}`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeURL prepares a URL for the first argument of \href. hyperref reads the
// argument verbatim except for # and %, and braces or backslashes would unbalance it.
func EscapeURL(url string) string {
	var result strings.Builder
	result.Grow(len(url) + 8)

	for _, r := range url {
		switch r {
		case '#':
			result.WriteString(`\#`)
		case '%':
			result.WriteString(`\%`)
		case '\\':
			result.WriteString(`\%5C`)
		case '{':
			result.WriteString(`\%7B`)
		case '}':
			result.WriteString(`\%7D`)
		case ' ':
			result.WriteString(`\%20`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
