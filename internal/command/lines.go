package command

import (
	"fmt"
	"strings"
)

// Line is one directive line of a section body.
type Line struct {
	Text   string
	File   string
	Number int
}

// SplitLines breaks a section body into directive lines. Blank lines and
// lines starting with ';' or '#' are dropped. firstLine is the line number
// of the first body line in file.
func SplitLines(body, file string, firstLine int) []Line {
	var out []Line
	for i, raw := range strings.Split(body, "\n") {
		text := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if text == "" || text[0] == ';' || text[0] == '#' {
			continue
		}
		out = append(out, Line{Text: text, File: file, Number: firstLine + i})
	}
	return out
}

// ParseError is a rejected directive line. The whole section it belongs to
// is rejected with it.
type ParseError struct {
	Section string
	Line    Line
	Err     error
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("line %d", e.Line.Number)
	if e.Line.File != "" {
		where = fmt.Sprintf("%s:%d", e.Line.File, e.Line.Number)
	}
	return fmt.Sprintf("%s: [%s] %q: %v", where, e.Section, e.Line.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// splitAssignment splits "key = value" at the first '=' that is not part of
// a comparison operator.
func splitAssignment(text string) (key, value string, ok bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '=' {
			continue
		}
		if i > 0 && strings.IndexByte("=!<>", text[i-1]) >= 0 {
			continue
		}
		if i+1 < len(text) && text[i+1] == '=' {
			i++
			continue
		}
		return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:]), true
	}
	return "", "", false
}

// cutWord splits off the first whitespace separated word.
func cutWord(text string) (word, rest string) {
	text = strings.TrimSpace(text)
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i+1:])
}
