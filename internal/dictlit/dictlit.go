// Package dictlit rewrites the loose dict-literal text the voice provider
// emits for its scoring blobs into strict JSON.
//
// The rewrite is a single scan that tracks whether it is inside a quoted
// string. Outside strings it converts quote delimiters, maps None/True/False
// and drops trailing commas. Inside strings only the escaping needed to keep
// the content valid JSON is touched, so text such as "None of the above"
// survives unchanged.
package dictlit

import (
	"fmt"
)

// SyntaxError reports the first construct the rewrite could not handle.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("dict literal: %s at offset %d", e.Msg, e.Offset)
}

var keywords = map[string]string{
	"None":  "null",
	"True":  "true",
	"False": "false",
	"null":  "null",
	"true":  "true",
	"false": "false",
}

// ToJSON converts src to JSON text. Bare identifiers other than the literal
// keywords are rejected rather than guessed at.
func ToJSON(src string) (string, error) {
	out := make([]byte, 0, len(src)+16)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\'' || c == '"':
			var err error
			out, i, err = appendString(out, src, i)
			if err != nil {
				return "", err
			}
		case c == '}' || c == ']':
			out = dropTrailingComma(out)
			out = append(out, c)
			i++
		case c == '-' || isDigit(c):
			j := i + 1
			for j < len(src) && isNumberPart(src[j]) {
				j++
			}
			out = append(out, src[i:j]...)
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			lit, ok := keywords[src[i:j]]
			if !ok {
				return "", &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected token %q", src[i:j])}
			}
			out = append(out, lit...)
			i = j
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out), nil
}

// appendString copies the string literal starting at src[start] as a JSON
// string and returns the offset just past its closing quote.
func appendString(out []byte, src string, start int) ([]byte, int, error) {
	quote := src[start]
	out = append(out, '"')
	for i := start + 1; i < len(src); {
		c := src[i]
		switch {
		case c == quote:
			return append(out, '"'), i + 1, nil
		case c == '\\':
			if i+1 >= len(src) {
				return nil, 0, &SyntaxError{Offset: i, Msg: "dangling escape"}
			}
			switch n := src[i+1]; n {
			case '\'':
				out = append(out, '\'')
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				out = append(out, '\\', n)
			default:
				return nil, 0, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unsupported escape \\%c", n)}
			}
			i += 2
		case c == '"':
			out = append(out, '\\', '"')
			i++
		case c == '\n':
			out = append(out, '\\', 'n')
			i++
		case c == '\r':
			out = append(out, '\\', 'r')
			i++
		case c == '\t':
			out = append(out, '\\', 't')
			i++
		case c < 0x20:
			out = append(out, fmt.Sprintf("\\u%04x", c)...)
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return nil, 0, &SyntaxError{Offset: start, Msg: "unterminated string"}
}

// dropTrailingComma removes a comma that is followed only by whitespace.
func dropTrailingComma(out []byte) []byte {
	k := len(out) - 1
	for k >= 0 && isSpace(out[k]) {
		k--
	}
	if k >= 0 && out[k] == ',' {
		return append(out[:k], out[k+1:]...)
	}
	return out
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberPart(c byte) bool {
	return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isSpace(c byte) bool { return c == ' ' || c == '\n' || c == '\r' || c == '\t' }
