// Package jsonc reads the JSONC catalogs (JSON with // and /* */ comments)
// that describe initiatives, sensors and crop calendars. Comments are
// stripped with a small scanner that tracks string literals, so a "//"
// inside a quoted value such as a URL is never mistaken for a comment.
package jsonc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// SyntaxError reports input that cannot be parsed even after comment
// stripping. Offset is the byte position in the original resource.
type SyntaxError struct {
	Path   string
	Offset int64
	msg    string
}

func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed config %s at byte %d: %s", e.Path, e.Offset, e.msg)
	}
	return fmt.Sprintf("malformed config at byte %d: %s", e.Offset, e.msg)
}

// Strip removes // line comments and /* */ block comments from src, replacing
// them with spaces so byte offsets reported by the JSON decoder still line up
// with the original input. Newlines inside block comments are preserved.
// An unterminated block comment is a SyntaxError.
func Strip(src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)

	const (
		stateCode = iota
		stateString
		stateStringEscape
		stateLineComment
		stateBlockComment
	)

	state := stateCode
	blockStart := 0
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case stateCode:
			switch {
			case c == '"':
				state = stateString
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = stateLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = stateBlockComment
				blockStart = i
				out[i] = ' '
			}
		case stateString:
			switch c {
			case '\\':
				state = stateStringEscape
			case '"':
				state = stateCode
			}
		case stateStringEscape:
			state = stateString
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = stateCode
			} else if c != '\n' {
				out[i] = ' '
			}
		}
	}

	if state == stateBlockComment {
		return nil, &SyntaxError{Offset: int64(blockStart), msg: "unterminated block comment"}
	}
	return out, nil
}

// Decode strips comments from src and unmarshals the remaining strict JSON
// into v. Decode is a pure function of its input; caching sits with callers.
func Decode(src []byte, v any) error {
	clean, err := Strip(src)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return wrapDecodeError(err)
	}
	return nil
}

// DecodeFile reads and decodes one JSONC resource. The path is attached to
// any syntax error for diagnostics.
func DecodeFile(path string, v any) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := Decode(src, v); err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Path = path
		}
		return err
	}
	return nil
}

func wrapDecodeError(err error) error {
	switch e := err.(type) {
	case *json.SyntaxError:
		return &SyntaxError{Offset: e.Offset, msg: e.Error()}
	case *json.UnmarshalTypeError:
		return &SyntaxError{Offset: e.Offset, msg: e.Error()}
	default:
		return &SyntaxError{msg: err.Error()}
	}
}
