package command

import "strings"

// StringView walks the argument portion of a prefixed message, yielding
// whitespace-separated words. Double-quoted words may contain spaces; a
// backslash escapes a quote or backslash inside them.
type StringView struct {
	buf   string
	index int
}

// NewStringView returns a view over s positioned at the start.
func NewStringView(s string) *StringView {
	return &StringView{buf: s}
}

func (v *StringView) skipWhitespace() {
	for v.index < len(v.buf) && (v.buf[v.index] == ' ' || v.buf[v.index] == '\t' || v.buf[v.index] == '\n') {
		v.index++
	}
}

// Empty reports whether no further words remain.
func (v *StringView) Empty() bool {
	v.skipWhitespace()
	return v.index >= len(v.buf)
}

// Word returns the next word. Call Empty first; Word at the end of input
// returns the empty string. An unclosed quote yields an ArgumentError.
func (v *StringView) Word() (string, error) {
	v.skipWhitespace()
	if v.index >= len(v.buf) {
		return "", nil
	}
	if v.buf[v.index] == '"' {
		return v.quotedWord()
	}
	start := v.index
	for v.index < len(v.buf) && v.buf[v.index] != ' ' && v.buf[v.index] != '\t' && v.buf[v.index] != '\n' {
		v.index++
	}
	return v.buf[start:v.index], nil
}

func (v *StringView) quotedWord() (string, error) {
	v.index++ // consume the opening quote
	var b strings.Builder
	for v.index < len(v.buf) {
		ch := v.buf[v.index]
		switch ch {
		case '\\':
			if v.index+1 < len(v.buf) {
				next := v.buf[v.index+1]
				if next == '"' || next == '\\' {
					b.WriteByte(next)
					v.index += 2
					continue
				}
			}
			b.WriteByte(ch)
			v.index++
		case '"':
			v.index++
			return b.String(), nil
		default:
			b.WriteByte(ch)
			v.index++
		}
	}
	return "", &ArgumentError{Message: "expected closing quote"}
}

// Rest consumes and returns everything left in the view, trimmed of
// surrounding whitespace.
func (v *StringView) Rest() string {
	v.skipWhitespace()
	rest := v.buf[v.index:]
	v.index = len(v.buf)
	return strings.TrimSpace(rest)
}
